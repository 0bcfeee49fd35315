package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the subset of the go-openai client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient completes turns with the OpenAI chat completions API.
type OpenAIClient struct {
	client ChatCompleter
	model  string
}

// NewOpenAIClient creates an OpenAI-backed client. baseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewOpenAIClientWith(openai.NewClientWithConfig(cfg), model)
}

// NewOpenAIClientWith wraps an existing completer.
func NewOpenAIClientWith(client ChatCompleter, model string) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{client: client, model: model}
}

func (c *OpenAIClient) Name() string { return ProviderOpenAI }

// Complete sends exactly one system message and one user message.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", serviceError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", serviceError(ProviderOpenAI, errors.New("no choices in completion response"))
	}

	log.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("OpenAI completion received")

	return resp.Choices[0].Message.Content, nil
}
