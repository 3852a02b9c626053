package providers

import (
	"net/http"
	"os"
	"strings"

	"github.com/redlinehq/redline/llm"
)

// OpenAIProvider targets api.openai.com or an OpenRouter gateway. The
// wire format is the chat-completions shape OllamaProvider already
// implements, so only the default URL and auth headers differ here.
type OpenAIProvider struct {
	OllamaProvider
}

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

// BuildURL defaults to the hosted API instead of a local endpoint.
func (o *OpenAIProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

// SetHeaders requires a bearer token; the OpenRouter attribution
// headers ride along when the environment provides them.
func (o *OpenAIProvider) SetHeaders(req *http.Request) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	if siteURL := os.Getenv("OPENROUTER_SITE_URL"); siteURL != "" {
		req.Header.Set("HTTP-Referer", siteURL)
	}
	if siteName := os.Getenv("OPENROUTER_SITE_NAME"); siteName != "" {
		req.Header.Set("X-Title", siteName)
	}
}
