package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_String(t *testing.T) {
	tests := []struct {
		speaker  Speaker
		text     string
		expected string
	}{
		{User, "Hello", "You: Hello"},
		{Agent, "Hi there", "AI: Hi there"},
		{SystemError, "Error: boom", "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.speaker.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, Entry{Speaker: tt.speaker, Text: tt.text}.String())
		})
	}
}

func TestLog_AppendOrder(t *testing.T) {
	l := NewLog()
	l.Append(User, "Hello")
	l.Append(Agent, "Hi there, tell me about yourself.")

	assert.Equal(t, []string{"You: Hello", "AI: Hi there, tell me about yourself."}, l.Lines())

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Seq)
	assert.Equal(t, 1, entries[1].Seq)
}

func TestLog_Since(t *testing.T) {
	l := NewLog()
	for i := 0; i < 3; i++ {
		l.Append(User, fmt.Sprint(i))
	}

	assert.Len(t, l.Since(0), 3)
	assert.Len(t, l.Since(-1), 3)
	tail := l.Since(2)
	require.Len(t, tail, 1)
	assert.Equal(t, "2", tail[0].Text)
	assert.Nil(t, l.Since(3))
}

func TestLog_SnapshotIsolation(t *testing.T) {
	l := NewLog()
	l.Append(User, "first")

	snapshot := l.Entries()
	snapshot[0].Text = "mutated"

	assert.Equal(t, "first", l.Entries()[0].Text)
}

func TestLog_UpdatesCoalesce(t *testing.T) {
	l := NewLog()
	l.Append(User, "a")
	l.Append(User, "b")

	select {
	case <-l.Updates():
	default:
		t.Fatal("expected an update signal")
	}

	select {
	case <-l.Updates():
		t.Fatal("signals should coalesce")
	default:
	}

	assert.Equal(t, 2, l.Len())
}

func TestLog_ConcurrentAppend(t *testing.T) {
	l := NewLog()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Append(Agent, fmt.Sprintf("%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	entries := l.Entries()
	require.Len(t, entries, 400)
	for i, e := range entries {
		assert.Equal(t, i, e.Seq)
	}
}
