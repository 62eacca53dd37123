// Package chat proxies visitor questions to an LLM provider and keeps a
// short per-session transcript in memory.
package chat

import (
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSession is used when a request carries no session id.
const DefaultSession = "default"

// DefaultMaxHistory caps each stored transcript.
const DefaultMaxHistory = 20

type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcripts holds the most recent entries of every session. Nothing is
// persisted across restarts.
type Transcripts struct {
	mu       sync.Mutex
	sessions map[string][]Entry
	max      int
}

func NewTranscripts(max int) *Transcripts {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &Transcripts{sessions: make(map[string][]Entry), max: max}
}

// History returns a copy of a session's transcript, oldest first.
func (t *Transcripts) History(sessionID string) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry{}, t.sessions[sessionID]...)
}

// Store replaces a session's transcript, keeping only the newest entries.
func (t *Transcripts) Store(sessionID string, entries []Entry) {
	if len(entries) > t.max {
		entries = entries[len(entries)-t.max:]
	}
	t.mu.Lock()
	t.sessions[sessionID] = append([]Entry(nil), entries...)
	t.mu.Unlock()
}

// Sessions returns the number of sessions with a transcript.
func (t *Transcripts) Sessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
