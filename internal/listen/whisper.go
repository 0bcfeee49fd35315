package listen

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Recognizer turns a recorded WAV file into text.
type Recognizer interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// TranscriptionCreator is the subset of the go-openai client used for speech
// recognition.
type TranscriptionCreator interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperRecognizer transcribes through the OpenAI audio API.
type WhisperRecognizer struct {
	client   TranscriptionCreator
	model    string
	language string
}

// NewWhisperRecognizer creates a recognizer for the given key and model.
func NewWhisperRecognizer(apiKey, model, language, baseURL string) *WhisperRecognizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return NewWhisperRecognizerWith(openai.NewClientWithConfig(cfg), model, language)
}

// NewWhisperRecognizerWith wraps an existing client.
func NewWhisperRecognizerWith(client TranscriptionCreator, model, language string) *WhisperRecognizer {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperRecognizer{client: client, model: model, language: language}
}

// Transcribe uploads the file and returns the recognized text.
func (r *WhisperRecognizer) Transcribe(ctx context.Context, wavPath string) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: wavPath,
		Language: r.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}

	log.Debug().Int("chars", len(resp.Text)).Msg("Transcription received")
	return resp.Text, nil
}
