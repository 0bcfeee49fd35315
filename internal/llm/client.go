// Package llm sends a persona prompt and one user turn to a chat completion
// service and returns the single reply.
package llm

import (
	"context"
	"fmt"
	"os"
)

// Fixed generation parameters for every turn.
const (
	Temperature = 0.7
	MaxTokens   = 150
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Client completes one stateless exchange.
type Client interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// ServiceError wraps any failure reaching or returned by the provider.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func serviceError(provider string, err error) error {
	return &ServiceError{Provider: provider, Err: err}
}

// Options configures a client.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New creates a client for the configured provider. The API key falls back to
// the provider's environment variable.
func New(opts Options) (Client, error) {
	switch opts.Provider {
	case "", ProviderOpenAI:
		key := firstNonEmpty(opts.APIKey, os.Getenv("OPENAI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key is required (use --api-key or set OPENAI_API_KEY environment variable)")
		}
		return NewOpenAIClient(key, opts.Model, opts.BaseURL), nil
	case ProviderAnthropic:
		key := firstNonEmpty(opts.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("Anthropic API key is required (use --api-key or set ANTHROPIC_API_KEY environment variable)")
		}
		return NewAnthropicClient(key, opts.Model, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic)", opts.Provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
