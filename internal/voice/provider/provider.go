package provider

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
)

// SampleRate is the rate every engine is asked to produce.
const SampleRate = 22050

// Provider defines the interface for TTS engines
type Provider interface {
	// Name returns the provider name
	Name() string

	// ListVoices returns available voices for this provider
	ListVoices(ctx context.Context) ([]Voice, error)

	// Synthesize renders text as 16-bit little-endian mono PCM
	Synthesize(ctx context.Context, text string, options SynthesizeOptions) (*PCM, error)

	// IsAvailable checks if the provider is available (can be used)
	IsAvailable(ctx context.Context) bool
}

// Voice represents a voice option
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Gender      string `json:"gender,omitempty"`
	Description string `json:"description,omitempty"`
}

// SynthesizeOptions contains options for text synthesis
type SynthesizeOptions struct {
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed,omitempty"`
	Language string  `json:"language,omitempty"`
	Model    string  `json:"model,omitempty"`
	Engine   string  `json:"engine,omitempty"`
}

// PCM is raw signed 16-bit little-endian mono audio.
type PCM struct {
	Data       []byte
	SampleRate int
}

// StripWAVHeader returns the data chunk of a RIFF/WAVE payload together with
// its sample rate. Payloads without a RIFF header are returned unchanged with
// the fallback rate.
func StripWAVHeader(b []byte, fallbackRate int) ([]byte, int, error) {
	if len(b) < 12 || !bytes.Equal(b[0:4], []byte("RIFF")) || !bytes.Equal(b[8:12], []byte("WAVE")) {
		return b, fallbackRate, nil
	}

	rate := fallbackRate
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		switch id {
		case "fmt ":
			if body+16 > len(b) {
				return nil, 0, fmt.Errorf("truncated fmt chunk")
			}
			channels := binary.LittleEndian.Uint16(b[body+2 : body+4])
			bits := binary.LittleEndian.Uint16(b[body+14 : body+16])
			if channels != 1 || bits != 16 {
				return nil, 0, fmt.Errorf("unsupported wav layout: %d channels, %d bits", channels, bits)
			}
			rate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
		case "data":
			end := body + size
			if end > len(b) {
				end = len(b)
			}
			return b[body:end], rate, nil
		}
		pos = body + size + size%2
	}
	return nil, 0, fmt.Errorf("wav payload has no data chunk")
}
