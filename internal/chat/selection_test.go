package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSelection(t *testing.T) {
	tests := []struct {
		name            string
		voices          []string
		initialScenario string
		initialVoice    string
		wantScenario    string
		wantVoice       string
	}{
		{"configured voice", []string{"Joanna", "Matthew"}, "Interview", "Matthew", "Interview", "Matthew"},
		{"unknown voice falls back to first", []string{"Joanna", "Matthew"}, "", "Brian", NoScenario, "Joanna"},
		{"no voices", nil, "", "Joanna", NoScenario, NoVoice},
		{"unknown scenario kept", []string{"Joanna"}, "Astronaut", "", "Astronaut", "Joanna"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelection([]string{"Doctor", "Interview"}, tt.voices, tt.initialScenario, tt.initialVoice)
			assert.Equal(t, tt.wantScenario, s.Scenario())
			assert.Equal(t, tt.wantVoice, s.Voice())
		})
	}
}

func TestSelection_Cycle(t *testing.T) {
	s := NewSelection([]string{"Doctor", "Interview", "Landlord"}, []string{"a", "b"}, "", "")

	assert.Equal(t, "Doctor", s.NextScenario())
	assert.Equal(t, "Interview", s.NextScenario())
	assert.Equal(t, "Landlord", s.NextScenario())
	assert.Equal(t, "Doctor", s.NextScenario())
	assert.Equal(t, "Landlord", s.PrevScenario())

	s.SetScenario(NoScenario)
	assert.Equal(t, "Landlord", s.PrevScenario())

	assert.Equal(t, "b", s.NextVoice())
	assert.Equal(t, "a", s.NextVoice())
}

func TestSelection_SetVoice(t *testing.T) {
	s := NewSelection(nil, []string{"a", "b"}, "", "a")

	assert.True(t, s.SetVoice("b"))
	assert.False(t, s.SetVoice("zz"))
	assert.Equal(t, Choice{Scenario: NoScenario, Voice: "b"}, s.Snapshot())
}

func TestSelection_Empty(t *testing.T) {
	s := NewSelection(nil, nil, "", "")
	assert.Equal(t, NoScenario, s.NextScenario())
	assert.Equal(t, NoVoice, s.NextVoice())
}
