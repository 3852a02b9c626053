package suggest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlinehq/redline/llm"
	_ "github.com/redlinehq/redline/llm/providers" // Register providers
	"github.com/redlinehq/redline/suggest"
)

// checkerServer fakes an OpenAI-compatible endpoint that always answers
// with content. The last request body is kept for inspection.
func checkerServer(t *testing.T, content string, lastBody *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			body, _ := io.ReadAll(r.Body)
			*lastBody = string(body)
		}
		resp := map[string]any{
			"model": "test-model",
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(url string) *llm.Client {
	return llm.NewClient(llm.Endpoint{Provider: "ollama", Model: "test-model", BaseURL: url})
}

func TestLLMSuggester_ValidResponseCompacted(t *testing.T) {
	// A fenced, indented, comma-abusing response must come out as one
	// compact JSON object.
	content := "```json\n{\n  \"original_text\": \"我跑的很快。\",\n  \"error_type\": \"错别字\",\n  \"description\": \"“的/得”混淆。\",\n  \"checked_text\": \"我跑得很快。\",\n}\n```"
	server := checkerServer(t, content, nil)
	defer server.Close()

	s := suggest.NewLLMSuggester(newTestClient(server.URL), "", nil)
	payload, err := s.Suggest(context.Background(), "我跑的很快。")
	require.NoError(t, err)

	assert.False(t, strings.Contains(payload, "\n"))
	assert.Equal(t,
		`{"original_text":"我跑的很快。","error_type":"错别字","description":"“的/得”混淆。","checked_text":"我跑得很快。"}`,
		payload)
}

func TestLLMSuggester_ProseResponseFlattened(t *testing.T) {
	server := checkerServer(t, "This sentence\nlooks fine\nto me.", nil)
	defer server.Close()

	s := suggest.NewLLMSuggester(newTestClient(server.URL), "", nil)
	payload, err := s.Suggest(context.Background(), "whatever")
	require.NoError(t, err)

	assert.Equal(t, "This sentence looks fine to me.", payload)
}

func TestLLMSuggester_MissingKeysFallBackToRaw(t *testing.T) {
	// An object that drops required keys fails validation and passes
	// through raw.
	server := checkerServer(t, `{"original_text":"x","checked_text":"y"}`, nil)
	defer server.Close()

	s := suggest.NewLLMSuggester(newTestClient(server.URL), "", nil)
	payload, err := s.Suggest(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, `{"original_text":"x","checked_text":"y"}`, payload)
}

func TestLLMSuggester_SendsPromptAndSentence(t *testing.T) {
	var lastBody string
	server := checkerServer(t, `{"original_text":"x","error_type":"","description":"","checked_text":"x"}`, &lastBody)
	defer server.Close()

	temp := 0.2
	s := suggest.NewLLMSuggester(newTestClient(server.URL), "", &temp)
	_, err := s.Suggest(context.Background(), "他己经完成了。")
	require.NoError(t, err)

	// System prompt, few-shot examples, and the sentence all travel in
	// one request.
	assert.Contains(t, lastBody, "meticulous proofreader")
	assert.Contains(t, lastBody, "Example outputs:")
	assert.Contains(t, lastBody, "他己经完成了。")
	assert.Contains(t, lastBody, `"temperature":0.2`)
}

func TestLLMSuggester_CustomPromptReplacesDefault(t *testing.T) {
	var lastBody string
	server := checkerServer(t, `{"original_text":"x","error_type":"","description":"","checked_text":"x"}`, &lastBody)
	defer server.Close()

	s := suggest.NewLLMSuggester(newTestClient(server.URL), "You check haiku meter only.", nil)
	_, err := s.Suggest(context.Background(), "x")
	require.NoError(t, err)

	assert.Contains(t, lastBody, "You check haiku meter only.")
	assert.NotContains(t, lastBody, "meticulous proofreader")
}

func TestLLMSuggester_APIErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad key"))
	}))
	defer server.Close()

	s := suggest.NewLLMSuggester(newTestClient(server.URL), "", nil)
	_, err := s.Suggest(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check sentence")
}
