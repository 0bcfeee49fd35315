package provider

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAISampleRate is the fixed rate of the OpenAI pcm response format.
const OpenAISampleRate = 24000

// SpeechCreator is the subset of the go-openai client used for TTS.
type SpeechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIProvider implements the Provider interface for OpenAI Audio API
type OpenAIProvider struct {
	client SpeechCreator
	model  string
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return NewOpenAIProviderWith(openai.NewClientWithConfig(cfg), model)
}

// NewOpenAIProviderWith wraps an existing speech client.
func NewOpenAIProviderWith(client SpeechCreator, model string) *OpenAIProvider {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAIProvider{client: client, model: model}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// ListVoices returns available OpenAI voices
func (p *OpenAIProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	voices := []Voice{
		{ID: "alloy", Name: "Alloy", Language: "en", Gender: "neutral", Description: "Balanced, clear voice"},
		{ID: "echo", Name: "Echo", Language: "en", Gender: "male", Description: "Deep, resonant voice"},
		{ID: "fable", Name: "Fable", Language: "en", Gender: "neutral", Description: "Expressive, storytelling voice"},
		{ID: "onyx", Name: "Onyx", Language: "en", Gender: "male", Description: "Strong, authoritative voice"},
		{ID: "nova", Name: "Nova", Language: "en", Gender: "female", Description: "Bright, energetic voice"},
		{ID: "shimmer", Name: "Shimmer", Language: "en", Gender: "female", Description: "Warm, friendly voice"},
	}
	return voices, nil
}

// Synthesize generates 24 kHz PCM from text using OpenAI Audio API
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (*PCM, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voice := options.Voice
	if voice == "" {
		voice = "alloy"
	}

	model := options.Model
	if model == "" {
		model = p.model
	}

	speed := options.Speed
	if speed <= 0 {
		speed = 1.0
	}
	if speed < 0.25 {
		speed = 0.25
	}
	if speed > 4.0 {
		speed = 4.0
	}

	log.Debug().
		Str("voice", voice).
		Str("model", model).
		Float64("speed", speed).
		Msg("Making OpenAI TTS request")

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatPcm,
		Speed:          speed,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAI audio: %w", err)
	}

	log.Debug().Int("audio_bytes", len(data)).Msg("OpenAI TTS request successful")
	return &PCM{Data: data, SampleRate: OpenAISampleRate}, nil
}

// IsAvailable reports whether a client is configured. OpenAI has no free
// health endpoint for speech, so no request is made.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	return p.client != nil
}
