package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/redlinehq/redline/llm"
)

// OllamaProvider speaks the OpenAI-compatible chat API that Ollama,
// vLLM, and similar local endpoints expose. It is the default checker
// backend: one local model, no API key needed.
type OllamaProvider struct{}

func init() {
	llm.RegisterProvider(&OllamaProvider{})
}

func (o *OllamaProvider) Name() string {
	return "ollama"
}

// BuildURL appends the chat completions path unless the configured
// endpoint already names it.
func (o *OllamaProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

// SetHeaders sends a bearer token when one is configured; local Ollama
// ignores it, OpenRouter-style gateways require it.
func (o *OllamaProvider) SetHeaders(req *http.Request) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}

// chatRequest and chatResponse are the OpenAI-compatible wire shapes,
// shared with OpenAIProvider.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildRequestBody keeps system messages inline; this API shape takes
// them as ordinary chat turns. A nil temperature leaves the field out
// so the endpoint default applies, and zero travels explicitly.
func (o *OllamaProvider) BuildRequestBody(model string, messages []llm.Message, temperature *float64, maxTokens int) ([]byte, error) {
	turns := make([]chatMessage, len(messages))
	for i, msg := range messages {
		turns[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := chatRequest{
		Model:       model,
		Messages:    turns,
		Temperature: temperature,
	}
	if maxTokens > 0 {
		req.MaxTokens = &maxTokens
	}

	return json.Marshal(req)
}

type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ParseResponse takes the first choice; the checker only ever asks for
// one.
func (o *OllamaProvider) ParseResponse(body []byte, _ string) (*llm.Response, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse chat response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &llm.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}
