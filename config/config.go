// Package config provides configuration loading and management for redline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete redline configuration
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Suggest   SuggestConfig   `yaml:"suggest"`
	Documents DocumentsConfig `yaml:"documents"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

// ModelConfig configures the LLM model settings
type ModelConfig struct {
	// Provider selects the API shape ("ollama", "openai", "anthropic")
	Provider string `yaml:"provider"`
	// Name is the model to use (e.g., "qwen2.5:14b")
	Name string `yaml:"name"`
	// Endpoint is the API endpoint (default: http://localhost:11434/v1)
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for one model response,
	// as a duration string like "3m" or "90s"
	Timeout string `yaml:"timeout"`
}

// GetTimeout parses the response timeout, falling back to the default
// when unset or unparsable.
func (m ModelConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(m.Timeout)
	if err != nil || d <= 0 {
		return 3 * time.Minute
	}
	return d
}

// PromptConfig configures the checking prompt
type PromptConfig struct {
	// System overrides the built-in proofreading system prompt
	System string `yaml:"system"`
}

// SuggestConfig configures the suggestion run
type SuggestConfig struct {
	// RequestDelay is the pause between model calls, as a duration
	// string like "1s" (rate-limit courtesy for local endpoints)
	RequestDelay string `yaml:"request_delay"`
	// KeepClean also writes records the checker found nothing wrong
	// with; by default they are skipped so review only sees findings
	KeepClean bool `yaml:"keep_clean"`
}

// GetRequestDelay parses the inter-request delay, falling back to the
// default when unset or unparsable.
func (s SuggestConfig) GetRequestDelay() time.Duration {
	d, err := time.ParseDuration(s.RequestDelay)
	if err != nil || d < 0 {
		return time.Second
	}
	return d
}

// DocumentsConfig configures where the live documents live
type DocumentsConfig struct {
	// Root is the documents root path (auto-detected from git if empty)
	Root string `yaml:"root"`
}

// WorkspaceConfig configures the working directory for change and
// suggestion files
type WorkspaceConfig struct {
	// Dir is the workspace directory, resolved against the documents
	// root when relative (default: .redline)
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Name:        "qwen2.5:14b",
			Endpoint:    "http://localhost:11434/v1",
			Temperature: 0.2,
			Timeout:     "3m",
		},
		Suggest: SuggestConfig{
			RequestDelay: "1s",
		},
		Documents: DocumentsConfig{
			Root: "", // Auto-detect
		},
		Workspace: WorkspaceConfig{
			Dir: ".redline",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.Timeout != "" {
		if _, err := time.ParseDuration(c.Model.Timeout); err != nil {
			return fmt.Errorf("model.timeout is not a duration: %w", err)
		}
	}
	if c.Suggest.RequestDelay != "" {
		if _, err := time.ParseDuration(c.Suggest.RequestDelay); err != nil {
			return fmt.Errorf("suggest.request_delay is not a duration: %w", err)
		}
	}
	if c.Workspace.Dir == "" {
		return fmt.Errorf("workspace.dir is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != "" {
		c.Model.Timeout = other.Model.Timeout
	}

	// Prompt
	if other.Prompt.System != "" {
		c.Prompt.System = other.Prompt.System
	}

	// Suggest
	if other.Suggest.RequestDelay != "" {
		c.Suggest.RequestDelay = other.Suggest.RequestDelay
	}
	if other.Suggest.KeepClean {
		c.Suggest.KeepClean = true
	}

	// Documents
	if other.Documents.Root != "" {
		c.Documents.Root = other.Documents.Root
	}

	// Workspace
	if other.Workspace.Dir != "" {
		c.Workspace.Dir = other.Workspace.Dir
	}
}
