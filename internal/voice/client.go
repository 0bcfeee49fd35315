package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/daikw/scenariochat/internal/voice/provider"
)

// ErrUnknownVoice is wrapped by SynthesisError when the voice id was not
// enumerated by the engine.
var ErrUnknownVoice = errors.New("unknown voice")

// SynthesisError reports a failure to turn text into audio.
type SynthesisError struct {
	Voice string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("voice %s: %v", e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Options tune every synthesis request of a Client.
type Options struct {
	Engine   string
	Model    string
	Language string
	Speed    float64
}

// Client is the speech synthesis client: a voice registry filled once from the
// engine, synthesis normalized to PlaybackRate, and asynchronous playback.
type Client struct {
	provider provider.Provider
	player   Player
	opts     Options

	mu     sync.RWMutex
	voices []provider.Voice
	ids    map[string]struct{}
}

// NewClient creates a client; call Init before synthesizing.
func NewClient(p provider.Provider, player Player, opts Options) *Client {
	return &Client{provider: p, player: player, opts: opts}
}

// Engine returns the engine name.
func (c *Client) Engine() string {
	return c.provider.Name()
}

// Init enumerates the engine voices. It is a no-op after the first success.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ids != nil {
		return nil
	}

	voices, err := c.provider.ListVoices(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate %s voices: %w", c.provider.Name(), err)
	}
	if len(voices) == 0 {
		return fmt.Errorf("%s reported no voices", c.provider.Name())
	}

	ids := make(map[string]struct{}, len(voices))
	for _, v := range voices {
		ids[v.ID] = struct{}{}
	}
	c.voices = voices
	c.ids = ids

	log.Debug().Str("engine", c.provider.Name()).Int("voices", len(voices)).Msg("Voices enumerated")
	return nil
}

// Voices returns the enumerated voices.
func (c *Client) Voices() []provider.Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]provider.Voice(nil), c.voices...)
}

// VoiceIDs returns the enumerated voice ids in engine order.
func (c *Client) VoiceIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.voices))
	for i, v := range c.voices {
		ids[i] = v.ID
	}
	return ids
}

// HasVoice reports whether id was enumerated.
func (c *Client) HasVoice(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// Synthesize renders text with the given voice at PlaybackRate.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (*Waveform, error) {
	if !c.HasVoice(voiceID) {
		return nil, &SynthesisError{Voice: voiceID, Err: ErrUnknownVoice}
	}

	text = strings.TrimSpace(StripMarkdown(text))
	if text == "" {
		return nil, &SynthesisError{Voice: voiceID, Err: errors.New("nothing to speak")}
	}

	pcm, err := c.provider.Synthesize(ctx, text, provider.SynthesizeOptions{
		Voice:    voiceID,
		Engine:   c.opts.Engine,
		Model:    c.opts.Model,
		Language: c.opts.Language,
		Speed:    c.opts.Speed,
	})
	if err != nil {
		return nil, &SynthesisError{Voice: voiceID, Err: err}
	}
	if len(pcm.Data) < 2 {
		return nil, &SynthesisError{Voice: voiceID, Err: errors.New("engine returned no audio")}
	}

	w := FromPCM(pcm.Data, pcm.SampleRate)
	if w.SampleRate != PlaybackRate {
		log.Debug().Int("from", w.SampleRate).Int("to", PlaybackRate).Msg("Resampling synthesized audio")
		w = w.Resample(PlaybackRate)
	}
	return w, nil
}

// Play hands the waveform to the player and returns immediately.
func (c *Client) Play(w *Waveform) error {
	if c.player == nil {
		return ErrNoPlayer
	}
	return c.player.Play(w)
}

// Speak synthesizes text and starts playback.
func (c *Client) Speak(ctx context.Context, text, voiceID string) error {
	w, err := c.Synthesize(ctx, text, voiceID)
	if err != nil {
		return err
	}
	if err := c.Play(w); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	log.Debug().Str("voice", voiceID).Float64("seconds", w.Duration()).Msg("Playback started")
	return nil
}
