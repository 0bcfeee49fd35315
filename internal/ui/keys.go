package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the chat screen bindings.
type KeyMap struct {
	Send         key.Binding
	Listen       key.Binding
	NextScenario key.Binding
	PrevScenario key.Binding
	NextVoice    key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	Quit         key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Listen: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "voice input"),
		),
		NextScenario: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "next scenario"),
		),
		PrevScenario: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "prev scenario"),
		),
		NextVoice: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "next voice"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown under the input.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Listen, k.NextScenario, k.PrevScenario, k.NextVoice, k.Quit}
}

// FullHelp returns every binding grouped by concern.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Listen},
		{k.NextScenario, k.PrevScenario, k.NextVoice},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}
