// Package llm provides a provider-agnostic completion client with retry
// support. Providers register themselves by name; the client drives one
// configured endpoint and classifies failures as transient (retried with
// backoff) or fatal (reported immediately).
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Endpoint identifies the provider, model, and base URL to call.
type Endpoint struct {
	Provider string
	Model    string
	BaseURL  string
}

// Client is a provider-agnostic LLM client with retry support.
type Client struct {
	endpoint    Endpoint
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines an LLM completion request.
type Request struct {
	// Messages is the chat history to send to the LLM.
	Messages []Message

	// Temperature controls randomness. nil uses endpoint default, 0 is deterministic.
	Temperature *float64

	// MaxTokens limits response length. 0 uses endpoint default.
	MaxTokens int
}

// TokenUsage represents token consumption details for an LLM call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the LLM completion result.
type Response struct {
	// RequestID uniquely identifies this LLM call in logs.
	// Set by Complete() so callers can correlate records with requests.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the actual model that was used.
	Model string

	// Usage contains token consumption metrics, when the provider
	// reports them.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per-request timeout on the HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a new LLM client for the given endpoint.
func NewClient(endpoint Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // Allow time for LLM responses
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends a completion request, retrying transient failures.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	requestID := uuid.New().String()
	startedAt := time.Now()

	var lastErr error
	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, req)
		if err == nil {
			resp.RequestID = requestID
			c.logger.Debug("LLM request completed",
				"request_id", requestID,
				"provider", c.endpoint.Provider,
				"model", resp.Model,
				"attempt", attempt,
				"duration_ms", time.Since(startedAt).Milliseconds(),
				"total_tokens", resp.Usage.TotalTokens)
			return resp, nil
		}

		lastErr = err

		// Don't retry fatal errors
		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("Request failed, retrying",
				"request_id", requestID,
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				// Continue to retry
			}
		}
	}

	return nil, fmt.Errorf("%s request failed after %d attempts: %w",
		c.endpoint.Provider, c.retryConfig.MaxAttempts, lastErr)
}

// calculateBackoff computes exponential backoff duration with jitter.
// Jitter prevents thundering herd when multiple clients retry simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	// Add jitter: +/- 25% to prevent synchronized retries
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// doRequest executes a single HTTP request to the LLM endpoint.
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	provider := GetProvider(c.endpoint.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", c.endpoint.Provider))
	}

	url := provider.BuildURL(c.endpoint.BaseURL)

	body, err := provider.BuildRequestBody(c.endpoint.Model, req.Messages, req.Temperature, req.MaxTokens)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending LLM request",
		"provider", c.endpoint.Provider,
		"model", c.endpoint.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	// Read response body with size limit to prevent memory exhaustion
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return provider.ParseResponse(respBody, c.endpoint.Model)
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("LLM API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		// Rate limiting is transient
		return NewTransientError(err)
	case statusCode >= 500:
		// Server errors are transient
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		// Auth errors are fatal
		return NewFatalError(err)
	case statusCode == http.StatusBadRequest:
		// Bad requests are fatal
		return NewFatalError(err)
	default:
		// Unknown errors default to fatal
		return NewFatalError(err)
	}
}
