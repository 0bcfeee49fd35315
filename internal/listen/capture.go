package listen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/daikw/scenariochat/internal/voice"
)

// DefaultSilenceThreshold is the normalized RMS below which a recording is
// treated as silence.
const DefaultSilenceThreshold = 0.01

// ErrSilence means nothing intelligible was said.
var ErrSilence = errors.New("no speech detected")

// RecognitionError reports a failure of the recorder or the recognizer.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return e.Err.Error()
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Adapter performs one blocking microphone capture and recognition.
type Adapter struct {
	recorder   Recorder
	recognizer Recognizer
	threshold  float64
}

// NewAdapter creates a capture adapter.
func NewAdapter(recorder Recorder, recognizer Recognizer) *Adapter {
	return &Adapter{recorder: recorder, recognizer: recognizer, threshold: DefaultSilenceThreshold}
}

// WithThreshold overrides the silence threshold.
func (a *Adapter) WithThreshold(threshold float64) *Adapter {
	a.threshold = threshold
	return a
}

// Capture records one utterance and returns its transcript. It returns
// ErrSilence when nothing was said and a *RecognitionError when recording or
// recognition failed. It blocks; never call it from the UI loop.
func (a *Adapter) Capture(ctx context.Context) (string, error) {
	path, err := a.recorder.Record(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RecognitionError{Err: err}
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &RecognitionError{Err: fmt.Errorf("failed to read recording: %w", err)}
	}

	w, err := voice.DecodeWAV(data)
	if err != nil {
		return "", &RecognitionError{Err: fmt.Errorf("failed to decode recording: %w", err)}
	}

	rms := w.RMS()
	log.Debug().Float64("seconds", w.Duration()).Float64("rms", rms).Msg("Recording finished")
	if len(w.Samples) == 0 || rms < a.threshold {
		return "", ErrSilence
	}

	text, err := a.recognizer.Transcribe(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RecognitionError{Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrSilence
	}
	return text, nil
}
