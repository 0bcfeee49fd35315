// Package conversation holds the append-only transcript shown to the user.
//
// Workers append from any goroutine. The UI never renders from inside Append;
// it is woken through Updates and re-reads the log on its own event loop, so
// visual changes always happen in the UI context.
package conversation

import (
	"sync"
	"time"
)

// Speaker tags who produced an entry.
type Speaker int

const (
	User Speaker = iota
	Agent
	SystemError
)

func (s Speaker) String() string {
	switch s {
	case User:
		return "user"
	case Agent:
		return "agent"
	case SystemError:
		return "system"
	default:
		return "unknown"
	}
}

// Entry is one line of the transcript. Entries are never mutated.
type Entry struct {
	Seq     int
	Speaker Speaker
	Text    string
	At      time.Time
}

// String renders the entry the way the transcript shows it.
func (e Entry) String() string {
	switch e.Speaker {
	case User:
		return "You: " + e.Text
	case Agent:
		return "AI: " + e.Text
	default:
		return e.Text
	}
}

// Display is the append side of the transcript.
type Display interface {
	Append(speaker Speaker, text string) Entry
}

// Log is an ordered, append-only transcript safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	updates chan struct{}
	now     func() time.Time
}

// NewLog creates an empty transcript.
func NewLog() *Log {
	return &Log{
		updates: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Append adds an entry at the end of the log. Entries appear in the exact
// order Append calls complete.
func (l *Log) Append(speaker Speaker, text string) Entry {
	l.mu.Lock()
	e := Entry{
		Seq:     len(l.entries),
		Speaker: speaker,
		Text:    text,
		At:      l.now(),
	}
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	// Coalesced wake-up; the reader always re-reads the whole tail.
	select {
	case l.updates <- struct{}{}:
	default:
	}
	return e
}

// Entries returns a snapshot of all entries.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the entries with Seq >= seq.
func (l *Log) Since(seq int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= len(l.entries) {
		return nil
	}
	out := make([]Entry, len(l.entries)-seq)
	copy(out, l.entries[seq:])
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Lines renders every entry as transcript text.
func (l *Log) Lines() []string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

// Updates signals that new entries may be available.
func (l *Log) Updates() <-chan struct{} {
	return l.updates
}
