package chat

import "sync"

// Placeholders shown while nothing is selected.
const (
	NoScenario = "Select Scenario"
	NoVoice    = "Voice Changer"
)

// Choice is a snapshot of the current selections taken when a turn is built.
type Choice struct {
	Scenario string
	Voice    string
}

// Selection holds the user's current scenario and voice.
type Selection struct {
	mu        sync.RWMutex
	scenarios []string
	voices    []string
	scenario  string
	voice     string
}

// NewSelection creates a selection over the given options. The initial
// scenario is kept as given, so an unknown name reaches the orchestrator and
// fails there. The initial voice falls back to the first option when it was
// not enumerated.
func NewSelection(scenarios, voices []string, initialScenario, initialVoice string) *Selection {
	s := &Selection{
		scenarios: append([]string(nil), scenarios...),
		voices:    append([]string(nil), voices...),
		scenario:  NoScenario,
		voice:     NoVoice,
	}
	if initialScenario != "" {
		s.scenario = initialScenario
	}

	switch {
	case contains(s.voices, initialVoice):
		s.voice = initialVoice
	case len(s.voices) > 0:
		s.voice = s.voices[0]
	}
	return s
}

// Scenario returns the selected scenario name or NoScenario.
func (s *Selection) Scenario() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenario
}

// Voice returns the selected voice id or NoVoice.
func (s *Selection) Voice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voice
}

// Scenarios returns the selectable scenario names.
func (s *Selection) Scenarios() []string {
	return append([]string(nil), s.scenarios...)
}

// Voices returns the selectable voice ids.
func (s *Selection) Voices() []string {
	return append([]string(nil), s.voices...)
}

// SetScenario selects name. Any name is accepted; it is resolved on submit.
func (s *Selection) SetScenario(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenario = name
}

// SetVoice selects id if it was enumerated and reports whether it did.
func (s *Selection) SetVoice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !contains(s.voices, id) {
		return false
	}
	s.voice = id
	return true
}

// NextScenario cycles forward through the scenarios and returns the new one.
func (s *Selection) NextScenario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenario = step(s.scenarios, s.scenario, 1)
	return s.scenario
}

// PrevScenario cycles backward through the scenarios and returns the new one.
func (s *Selection) PrevScenario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenario = step(s.scenarios, s.scenario, -1)
	return s.scenario
}

// NextVoice cycles forward through the voices and returns the new one.
func (s *Selection) NextVoice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = step(s.voices, s.voice, 1)
	return s.voice
}

// Snapshot returns both selections at once.
func (s *Selection) Snapshot() Choice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Choice{Scenario: s.scenario, Voice: s.voice}
}

// step moves delta positions from current. An unknown current starts at the
// first option going forward and the last going backward.
func step(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	idx := indexOf(options, current)
	if idx < 0 {
		if delta > 0 {
			return options[0]
		}
		return options[len(options)-1]
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}

func indexOf(options []string, v string) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return -1
}

func contains(options []string, v string) bool {
	return indexOf(options, v) >= 0
}
