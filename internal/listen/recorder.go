package listen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// RecordRate is the capture sample rate; Whisper resamples internally.
const RecordRate = 16000

// Recorder captures one utterance into a WAV file and returns its path.
// The caller removes the file.
type Recorder interface {
	Record(ctx context.Context) (string, error)
}

// CommandRecorder records from the default input through sox `rec` or ALSA
// `arecord`.
type CommandRecorder struct {
	tool       string
	maxSeconds int
}

// NewCommandRecorder picks tool, or the first installed of rec and arecord
// when tool is empty.
func NewCommandRecorder(tool string, maxSeconds int) (*CommandRecorder, error) {
	if maxSeconds <= 0 {
		maxSeconds = 10
	}

	candidates := []string{"rec", "arecord"}
	if tool != "" {
		candidates = []string{tool}
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c); err == nil {
			return &CommandRecorder{tool: c, maxSeconds: maxSeconds}, nil
		}
	}
	return nil, fmt.Errorf("no recorder found (tried %v)", candidates)
}

// Tool returns the recorder command name.
func (r *CommandRecorder) Tool() string {
	return r.tool
}

func (r *CommandRecorder) args(path string) []string {
	seconds := strconv.Itoa(r.maxSeconds)
	rate := strconv.Itoa(RecordRate)
	switch r.tool {
	case "arecord":
		return []string{"-q", "-f", "S16_LE", "-c", "1", "-r", rate, "-d", seconds, path}
	default:
		// start on sound, stop after 1.5s of silence, never longer than max
		return []string{"-q", "-c", "1", "-r", rate, "-b", "16", path,
			"silence", "1", "0.1", "1%", "1", "1.5", "1%", "trim", "0", seconds}
	}
}

// Record blocks until the utterance ends, maxSeconds pass, or ctx is done.
func (r *CommandRecorder) Record(ctx context.Context) (string, error) {
	tmpFile, err := os.CreateTemp("", "scenariochat_rec_*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()
	tmpFile.Close()

	limit, cancel := context.WithTimeout(ctx, time.Duration(r.maxSeconds+2)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(limit, r.tool, r.args(path)...)
	log.Debug().Str("recorder", r.tool).Int("max_seconds", r.maxSeconds).Msg("Recording utterance")

	if err := cmd.Run(); err != nil {
		// the safety timeout only truncates the recording
		if ctx.Err() != nil {
			_ = os.Remove(path)
			return "", ctx.Err()
		}
		if !errors.Is(limit.Err(), context.DeadlineExceeded) {
			_ = os.Remove(path)
			return "", fmt.Errorf("%s failed: %w", r.tool, err)
		}
	}

	return path, nil
}
