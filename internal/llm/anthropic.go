package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

// MessageCreator is the subset of the Anthropic messages service used here.
type MessageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicClient completes turns with the Anthropic messages API.
type AnthropicClient struct {
	messages MessageCreator
	model    string
}

// NewAnthropicClient creates an Anthropic-backed client.
func NewAnthropicClient(apiKey, model, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return NewAnthropicClientWith(&client.Messages, model)
}

// NewAnthropicClientWith wraps an existing messages service.
func NewAnthropicClientWith(messages MessageCreator, model string) *AnthropicClient {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClient{messages: messages, model: model}
}

func (c *AnthropicClient) Name() string { return ProviderAnthropic }

// Complete sends the persona as the system block and one user message.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   MaxTokens,
		Temperature: anthropic.Float(Temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	}

	resp, err := c.messages.New(ctx, params)
	if err != nil {
		return "", serviceError(ProviderAnthropic, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", serviceError(ProviderAnthropic, errors.New("no text content in response"))
	}

	log.Debug().
		Str("model", string(resp.Model)).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Msg("Anthropic completion received")

	return sb.String(), nil
}
