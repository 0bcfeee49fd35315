package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// GracePeriod bounds how long quitting waits for in-flight turns.
const GracePeriod = 2 * time.Second

const statusInterval = 250 * time.Millisecond

type transcriptMsg struct{}

type statusTickMsg time.Time

type closedMsg struct {
	err error
}

// waitForTranscript blocks until the transcript signals new entries.
func waitForTranscript(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return transcriptMsg{}
	}
}

// statusTick refreshes the in-flight and listening indicators.
func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// shutdown drains the worker pool and cancels whatever outlives the grace period.
func shutdown(c Controller, grace time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return closedMsg{err: c.Close(ctx)}
	}
}
