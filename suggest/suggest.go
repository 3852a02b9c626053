// Package suggest runs extracted sentences through a checking function
// and writes the resulting suggestion ledger. The checker is pluggable;
// the shipped implementation asks an LLM endpoint to proofread one
// sentence per request.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redlinehq/redline/ledger"
	"github.com/redlinehq/redline/llm"
)

// Suggester produces a one-line suggestion payload for a sentence.
// Implementations must never return multi-line payloads.
type Suggester interface {
	Suggest(ctx context.Context, text string) (string, error)
}

// LLMSuggester checks sentences with an LLM endpoint. Responses that
// fail payload validation degrade to the raw model output flattened to
// a single line, mirroring how loaders treat unparsable payloads.
type LLMSuggester struct {
	client       *llm.Client
	systemPrompt string
	temperature  *float64
}

// NewLLMSuggester wraps client as a Suggester. An empty systemPrompt
// selects DefaultSystemPrompt; temperature nil uses the model default.
func NewLLMSuggester(client *llm.Client, systemPrompt string, temperature *float64) *LLMSuggester {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &LLMSuggester{
		client:       client,
		systemPrompt: systemPrompt,
		temperature:  temperature,
	}
}

// Suggest checks one sentence and returns its payload line.
func (s *LLMSuggester) Suggest(ctx context.Context, text string) (string, error) {
	resp, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: s.systemPrompt},
			{Role: "system", Content: fewShotExamples},
			{Role: "user", Content: text},
		},
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("check sentence: %w", err)
	}

	payload, ok := parsePayload(resp.Content)
	if !ok {
		return flatten(resp.Content), nil
	}

	compact, err := json.Marshal(payload)
	if err != nil {
		return flatten(resp.Content), nil
	}
	return string(compact), nil
}

// payloadKeys are all required in a valid checker response.
var payloadKeys = []string{"original_text", "error_type", "description", "checked_text"}

// parsePayload validates a model response against the payload schema.
func parsePayload(content string) (ledger.Payload, bool) {
	jsonStr := llm.ExtractJSON(content)
	if jsonStr == "" {
		return ledger.Payload{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return ledger.Payload{}, false
	}
	for _, key := range payloadKeys {
		if _, ok := fields[key]; !ok {
			return ledger.Payload{}, false
		}
	}

	var p ledger.Payload
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return ledger.Payload{}, false
	}
	return p, true
}

// flatten collapses arbitrary model output onto one line so it cannot
// corrupt the line-oriented suggestion file.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
