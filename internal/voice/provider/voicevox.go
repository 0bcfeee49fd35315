package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	VoicevoxURL    = "http://127.0.0.1:50021"
	AivisSpeechURL = "http://127.0.0.1:10101"
)

// VoicevoxProvider speaks through a local VOICEVOX-compatible engine
// (VOICEVOX ENGINE or AivisSpeech). Each speaker style id is one voice.
type VoicevoxProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewVoicevoxProvider creates a provider for the engine at baseURL.
func NewVoicevoxProvider(name, baseURL string) *VoicevoxProvider {
	if baseURL == "" {
		baseURL = VoicevoxURL
	}
	if name == "" {
		name = "voicevox"
	}
	return &VoicevoxProvider{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *VoicevoxProvider) Name() string {
	return p.name
}

type voicevoxSpeaker struct {
	Name   string `json:"name"`
	Styles []struct {
		Name string `json:"name"`
		ID   int    `json:"id"`
	} `json:"styles"`
}

// ListVoices returns one voice per speaker style
func (p *VoicevoxProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/speakers", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create speakers request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list speakers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speakers request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var speakers []voicevoxSpeaker
	if err := json.NewDecoder(resp.Body).Decode(&speakers); err != nil {
		return nil, fmt.Errorf("failed to decode speakers: %w", err)
	}

	var voices []Voice
	for _, s := range speakers {
		for _, style := range s.Styles {
			voices = append(voices, Voice{
				ID:          strconv.Itoa(style.ID),
				Name:        fmt.Sprintf("%s (%s)", s.Name, style.Name),
				Language:    "ja-JP",
				Description: s.Name,
			})
		}
	}

	log.Debug().Int("count", len(voices)).Str("engine", p.name).Msg("Listed local engine voices")
	return voices, nil
}

// Synthesize runs audio_query then synthesis, asking for 22050 Hz mono output.
func (p *VoicevoxProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (*PCM, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	speakerID, err := strconv.Atoi(options.Voice)
	if err != nil {
		return nil, fmt.Errorf("invalid speaker id %q", options.Voice)
	}

	queryURL := fmt.Sprintf("%s/audio_query?speaker=%d&text=%s", p.baseURL, speakerID, url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio query request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("audio query failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var query map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("failed to read query response: %w", err)
	}
	query["outputSamplingRate"] = SampleRate
	query["outputStereo"] = false
	if options.Speed > 0 {
		query["speedScale"] = options.Speed
	}

	queryData, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audio query: %w", err)
	}

	synthURL := fmt.Sprintf("%s/synthesis?speaker=%d", p.baseURL, speakerID)
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, synthURL, bytes.NewReader(queryData))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	synth, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize: %w", err)
	}
	defer synth.Body.Close()

	if synth.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(synth.Body)
		return nil, fmt.Errorf("synthesis failed: status %d, body: %s", synth.StatusCode, string(body))
	}

	wav, err := io.ReadAll(synth.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	data, rate, err := StripWAVHeader(wav, SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s audio: %w", p.name, err)
	}

	log.Debug().Int("speaker", speakerID).Int("audio_bytes", len(data)).Msg("Local engine synthesis successful")
	return &PCM{Data: data, SampleRate: rate}, nil
}

// IsAvailable checks if the engine answers /version
func (p *VoicevoxProvider) IsAvailable(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, p.baseURL+"/version", nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("engine", p.name).Msg("Local engine availability check failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
