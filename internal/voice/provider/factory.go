package provider

import (
	"context"
	"fmt"
	"os"
)

const (
	NameOpenAI      = "openai"
	NameElevenLabs  = "elevenlabs"
	NamePolly       = "polly"
	NameGCP         = "gcp"
	NameVoicevox    = "voicevox"
	NameAivisSpeech = "aivisspeech"
)

// Settings carries the engine configuration for CreateProvider.
type Settings struct {
	Provider  string
	APIKey    string
	Region    string
	Engine    string
	ProjectID string
	Model     string
	Language  string
	// Host overrides the engine base URL (OpenAI, ElevenLabs, local engines).
	Host string
}

// Factory creates provider instances
type Factory struct{}

// NewFactory creates a new provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateProvider creates a provider instance from settings
func (f *Factory) CreateProvider(ctx context.Context, s Settings) (Provider, error) {
	switch s.Provider {
	case NameOpenAI:
		apiKey := firstNonEmpty(s.APIKey, os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found in config or OPENAI_API_KEY environment variable")
		}
		return NewOpenAIProvider(apiKey, s.Model, s.Host), nil
	case NameElevenLabs:
		apiKey := firstNonEmpty(s.APIKey, os.Getenv("ELEVENLABS_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("ElevenLabs API key not found in config or ELEVENLABS_API_KEY environment variable")
		}
		return NewElevenLabsProvider(apiKey, s.Model, s.Host), nil
	case NamePolly:
		return NewPollyProvider(ctx, s.Region, s.Engine)
	case NameGCP:
		var opts []GCPProviderOption
		if s.ProjectID != "" {
			opts = append(opts, WithGCPProjectID(s.ProjectID))
		}
		if s.Language != "" {
			opts = append(opts, WithGCPLanguage(s.Language))
		}
		return NewGCPProvider(ctx, opts...)
	case NameVoicevox:
		return NewVoicevoxProvider(NameVoicevox, firstNonEmpty(s.Host, VoicevoxURL)), nil
	case NameAivisSpeech:
		return NewVoicevoxProvider(NameAivisSpeech, firstNonEmpty(s.Host, AivisSpeechURL)), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}
}

// ListProviders returns available provider names
func (f *Factory) ListProviders() []string {
	return []string{NamePolly, NameGCP, NameOpenAI, NameElevenLabs, NameVoicevox, NameAivisSpeech}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
