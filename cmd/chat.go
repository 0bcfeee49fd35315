package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/scenariochat/internal/chat"
	"github.com/daikw/scenariochat/internal/conversation"
	"github.com/daikw/scenariochat/internal/ui"
)

func handleChat(ctx context.Context, c *cli.Command) error {
	a, err := loadApp(c)
	if err != nil {
		return err
	}

	// The chat screen owns the terminal; send logs to a file meanwhile.
	logPath := c.String("log-file")
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "scenariochat.log")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	stderrLogger := log.Logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, NoColor: true})
	defer func() { log.Logger = stderrLogger }()

	transcript := conversation.NewLog()
	s, err := a.newSession(ctx, c, transcript, true)
	if err != nil {
		return err
	}

	program := tea.NewProgram(ui.New(transcript, s.orch, s.selection), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	// The screen closes the pool on quit; this covers abnormal exits.
	closeCtx, cancel := context.WithTimeout(context.Background(), ui.GracePeriod)
	defer cancel()
	_ = s.orch.Close(closeCtx)

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("chat screen failed: %w", runErr)
	}
	return nil
}

func handleAsk(ctx context.Context, c *cli.Command) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message is required")
	}

	a, err := loadApp(c)
	if err != nil {
		return err
	}

	transcript := conversation.NewLog()
	s, err := a.newSession(ctx, c, transcript, false)
	if err != nil {
		return err
	}

	_, submitErr := s.orch.Submit(text)

	closeCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout()+ui.GracePeriod)
	defer cancel()
	closeErr := s.orch.Close(closeCtx)

	printTranscript(transcript.Entries())

	if submitErr != nil {
		if errors.Is(submitErr, chat.ErrInvalidScenario) {
			return fmt.Errorf("%w (choose one with --scenario, see 'scenariochat scenarios list')", submitErr)
		}
		return submitErr
	}
	return closeErr
}

func printTranscript(entries []conversation.Entry) {
	user := color.New(color.Bold)
	agent := color.New(color.FgGreen)
	system := color.New(color.FgRed)

	for _, e := range entries {
		switch e.Speaker {
		case conversation.User:
			user.Println(e.String())
		case conversation.Agent:
			agent.Println(e.String())
		default:
			system.Println(e.String())
		}
		fmt.Println()
	}
}
