package llm

import "time"

// RetryConfig shapes the backoff applied to transient completion
// failures. Fatal failures never consult it.
type RetryConfig struct {
	// MaxAttempts counts every try, the first request included.
	MaxAttempts int

	// BackoffBase is the wait before the first retry; each further
	// retry multiplies it by BackoffMultiplier, capped at MaxBackoff.
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig suits a checker that sends one small request per
// sentence: a few patient attempts, never minutes of waiting.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}
