package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ElevenLabsBaseURL        = "https://api.elevenlabs.io/v1"
	ElevenLabsTTSEndpoint    = "/text-to-speech"
	ElevenLabsVoicesEndpoint = "/voices"
	ElevenLabsOutputFormat   = "pcm_22050"
	DefaultElevenLabsModel   = "eleven_multilingual_v2"
)

// ElevenLabsProvider implements the Provider interface for ElevenLabs TTS API v1
type ElevenLabsProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewElevenLabsProvider creates a new ElevenLabs TTS provider
func NewElevenLabsProvider(apiKey, model, baseURL string) *ElevenLabsProvider {
	if model == "" {
		model = DefaultElevenLabsModel
	}
	if baseURL == "" {
		baseURL = ElevenLabsBaseURL
	}
	return &ElevenLabsProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *ElevenLabsProvider) Name() string {
	return "elevenlabs"
}

// ElevenLabsVoice represents a voice from ElevenLabs API
type ElevenLabsVoice struct {
	VoiceID         string            `json:"voice_id"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Labels          map[string]string `json:"labels"`
	Description     string            `json:"description"`
	AvailableForTts bool              `json:"available_for_tts"`
	FineTuning      struct {
		Language string `json:"language"`
	} `json:"fine_tuning"`
}

// ElevenLabsVoicesResponse represents the response from voices API
type ElevenLabsVoicesResponse struct {
	Voices []ElevenLabsVoice `json:"voices"`
}

// ListVoices returns ElevenLabs voices usable for synthesis
func (p *ElevenLabsProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+ElevenLabsVoicesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create voices request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)

	log.Debug().
		Str("endpoint", p.baseURL+ElevenLabsVoicesEndpoint).
		Msg("Making ElevenLabs voices request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make voices request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseElevenLabsError(resp)
	}

	var voicesResp ElevenLabsVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&voicesResp); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}

	voices := make([]Voice, 0, len(voicesResp.Voices))
	for _, v := range voicesResp.Voices {
		if !v.AvailableForTts {
			continue
		}

		language := "multilingual"
		if v.FineTuning.Language != "" {
			language = v.FineTuning.Language
		} else if l := v.Labels["language"]; l != "" {
			language = l
		}

		voices = append(voices, Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Language:    language,
			Gender:      v.Labels["gender"],
			Description: v.Description,
		})
	}

	log.Debug().Int("voice_count", len(voices)).Msg("ElevenLabs voices retrieved successfully")
	return voices, nil
}

// VoiceSettings tunes ElevenLabs voice rendering.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed,omitempty"`
}

// ElevenLabsTTSRequest represents the request body for TTS synthesis
type ElevenLabsTTSRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize generates 22050 Hz PCM from text using ElevenLabs TTS API
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (*PCM, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voice := options.Voice
	if voice == "" {
		voice = "21m00Tcm4TlvDq8ikWAM" // Rachel
	}

	model := options.Model
	if model == "" {
		model = p.model
	}

	body, err := json.Marshal(ElevenLabsTTSRequest{
		Text:    text,
		ModelID: model,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
			Speed:           options.Speed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s%s/%s?output_format=%s",
		p.baseURL, ElevenLabsTTSEndpoint, url.PathEscape(voice), ElevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	log.Debug().
		Str("voice", voice).
		Str("model", model).
		Msg("Making ElevenLabs TTS request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseElevenLabsError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ElevenLabs audio: %w", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("audio_bytes", len(data)).
		Msg("ElevenLabs TTS request successful")

	return &PCM{Data: data, SampleRate: SampleRate}, nil
}

// IsAvailable checks if ElevenLabs provider is available
func (p *ElevenLabsProvider) IsAvailable(ctx context.Context) bool {
	if p.apiKey == "" {
		return false
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, p.baseURL+ElevenLabsVoicesEndpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func parseElevenLabsError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errorResp ElevenLabsError
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Detail != nil {
		return fmt.Errorf("ElevenLabs API error: %s", errorResp.String())
	}
	return fmt.Errorf("ElevenLabs API error: status %d, body: %s", resp.StatusCode, string(body))
}

// ElevenLabsError represents an error from ElevenLabs API
type ElevenLabsError struct {
	Detail interface{} `json:"detail"`
}

func (e ElevenLabsError) String() string {
	switch detail := e.Detail.(type) {
	case string:
		return detail
	case map[string]interface{}:
		if msg, ok := detail["message"].(string); ok {
			return msg
		}
		if status, ok := detail["status"].(string); ok {
			return status
		}
		return fmt.Sprintf("%v", detail)
	case []interface{}:
		if len(detail) > 0 {
			if firstError, ok := detail[0].(map[string]interface{}); ok {
				if msg, ok := firstError["msg"].(string); ok {
					return msg
				}
			}
		}
		return fmt.Sprintf("%v", detail)
	default:
		return fmt.Sprintf("%v", detail)
	}
}
