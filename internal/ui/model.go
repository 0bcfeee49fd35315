// Package ui is the terminal chat screen: transcript, input line and a status
// bar with the current scenario and voice.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/daikw/scenariochat/internal/chat"
	"github.com/daikw/scenariochat/internal/conversation"
)

const title = "Scenario Chat Bot"

// Transcript is the read side of the conversation log.
type Transcript interface {
	Since(seq int) []conversation.Entry
	Updates() <-chan struct{}
}

// Controller accepts the user's submissions.
type Controller interface {
	Submit(text string) (*chat.PendingRequest, error)
	SubmitVoice() error
	Pending() int
	Listening() bool
	Close(ctx context.Context) error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Model is the bubbletea model of the chat screen.
type Model struct {
	transcript Transcript
	controller Controller
	selection  *chat.Selection
	keys       KeyMap
	grace      time.Duration

	viewport viewport.Model
	input    textinput.Model
	help     help.Model

	lines    []string
	next     int
	notice   string
	width    int
	quitting bool
}

// New creates the chat screen.
func New(transcript Transcript, controller Controller, selection *chat.Selection) Model {
	input := textinput.New()
	input.Placeholder = "Type a message and press enter"
	input.CharLimit = 2000
	input.Prompt = "> "
	input.Focus()

	m := Model{
		transcript: transcript,
		controller: controller,
		selection:  selection,
		keys:       NewKeyMap(),
		grace:      GracePeriod,
		viewport:   viewport.New(80, 20),
		input:      input,
		help:       help.New(),
		width:      80,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForTranscript(m.transcript.Updates()), statusTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		// title, input, status bar, help
		m.viewport.Height = max(msg.Height-6, 3)
		m.render()
		return m, nil

	case transcriptMsg:
		m.refresh()
		return m, waitForTranscript(m.transcript.Updates())

	case statusTickMsg:
		if m.quitting {
			return m, nil
		}
		return m, statusTick()

	case closedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("In-flight turns canceled on quit")
		}
		return m, tea.Quit

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.notice = "closing…"
			m.input.Blur()
			return m, shutdown(m.controller, m.grace)

		case key.Matches(msg, m.keys.Send):
			m.send()
			return m, nil

		case key.Matches(msg, m.keys.Listen):
			m.listen()
			return m, nil

		case key.Matches(msg, m.keys.NextScenario):
			m.notice = ""
			m.selection.NextScenario()
			return m, nil

		case key.Matches(msg, m.keys.PrevScenario):
			m.notice = ""
			m.selection.PrevScenario()
			return m, nil

		case key.Matches(msg, m.keys.NextVoice):
			m.notice = ""
			m.selection.NextVoice()
			return m, nil

		case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) send() {
	text := m.input.Value()
	m.input.Reset()
	m.notice = ""

	if _, err := m.controller.Submit(text); err != nil {
		// invalid scenario and busy already have a transcript entry
		if errors.Is(err, chat.ErrClosed) {
			m.notice = "closing…"
		}
		log.Debug().Err(err).Msg("Submission not dispatched")
	}
}

func (m *Model) listen() {
	err := m.controller.SubmitVoice()
	switch {
	case err == nil:
		m.notice = ""
	case errors.Is(err, chat.ErrCaptureDisabled):
		m.notice = "voice input is disabled"
	case errors.Is(err, chat.ErrAlreadyListening):
	default:
		log.Debug().Err(err).Msg("Voice capture not dispatched")
	}
}

// refresh pulls new entries from the transcript and keeps the view at the end.
func (m *Model) refresh() {
	for _, e := range m.transcript.Since(m.next) {
		m.lines = append(m.lines, styleEntry(e))
		m.next = e.Seq + 1
	}
	m.render()
}

func (m *Model) render() {
	wrap := lipgloss.NewStyle().Width(m.viewport.Width)
	m.viewport.SetContent(wrap.Render(strings.Join(m.lines, "\n\n")))
	m.viewport.GotoBottom()
}

func styleEntry(e conversation.Entry) string {
	switch e.Speaker {
	case conversation.User:
		return userStyle.Render(e.String())
	case conversation.Agent:
		return agentStyle.Render(e.String())
	default:
		return systemStyle.Render(e.String())
	}
}

func (m Model) status() string {
	choice := m.selection.Snapshot()
	parts := []string{
		"Scenario: " + choice.Scenario,
		"Voice: " + choice.Voice,
	}
	if n := m.controller.Pending(); n > 0 {
		parts = append(parts, fmt.Sprintf("in flight: %d", n))
	}
	if m.controller.Listening() {
		parts = append(parts, "listening…")
	}
	return statusStyle.Width(m.width).Render(strings.Join(parts, " │ "))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("  ")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
