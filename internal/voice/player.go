package voice

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoPlayer is returned when no audio player command can be found.
var ErrNoPlayer = errors.New("no audio player found")

// Player starts playback of a waveform and returns without waiting for it.
type Player interface {
	Play(w *Waveform) error
}

// CommandPlayer plays WAV temp files through an external command.
type CommandPlayer struct {
	argv []string
}

// candidate players in preference order
var players = [][]string{
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// NewCommandPlayer uses the configured command line when set, otherwise the
// first installed player.
func NewCommandPlayer(configured string) (*CommandPlayer, error) {
	if fields := strings.Fields(configured); len(fields) > 0 {
		if !isCommandAvailable(fields[0]) {
			return nil, fmt.Errorf("audio player %q not found", fields[0])
		}
		return &CommandPlayer{argv: fields}, nil
	}

	for _, argv := range players {
		if isCommandAvailable(argv[0]) {
			log.Debug().Str("player", argv[0]).Msg("Selected audio player")
			return &CommandPlayer{argv: argv}, nil
		}
	}
	return nil, ErrNoPlayer
}

// Command returns the player command line.
func (p *CommandPlayer) Command() []string {
	return append([]string(nil), p.argv...)
}

// Play writes w to a temp WAV file and starts the player on it. The file is
// removed when the player exits, even if this process has exited first.
func (p *CommandPlayer) Play(w *Waveform) error {
	if _, err := exec.LookPath(p.argv[0]); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "scenariochat_*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := w.EncodeWAV(tmpFile); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("failed to write audio: %w", err)
	}

	cmd := p.command(tmpFile.Name())
	if err := cmd.Start(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("failed to play audio: %w", err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("player", p.argv[0]).Msg("Audio player exited with error")
		}
		_ = os.Remove(tmpFile.Name())
	}()

	return nil
}

// removeAfter runs the player with the file as its last argument, then
// deletes the file. The shell outlives a process that exits mid-playback.
const removeAfter = `f=$1; shift; "$@" "$f"; s=$?; rm -f -- "$f"; exit $s`

// command builds the process that plays path. Where a POSIX shell is
// available it also removes path once the player exits.
func (p *CommandPlayer) command(path string) *exec.Cmd {
	if runtime.GOOS != "windows" && isCommandAvailable("sh") {
		args := append([]string{"-c", removeAfter, "scenariochat-play", path}, p.argv...)
		return exec.Command("sh", args...)
	}
	args := append(p.argv[1:len(p.argv):len(p.argv)], path)
	return exec.Command(p.argv[0], args...)
}

// isCommandAvailable checks if a command is available
func isCommandAvailable(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
