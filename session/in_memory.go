package session

import (
	"context"
	"sync"

	"github.com/hupe1980/supportmesh/core"
)

// InMemoryStore is a volatile SessionStore implementation storing
// transcripts in a process local map. It is safe for concurrent access and
// best suited for tests or ephemeral demo servers. Transcripts are cloned on
// the way in and out to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.Message
}

// NewInMemoryStore constructs an empty in‑memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]core.Message)}
}

// Get returns a copy of the stored transcript, or an empty one.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) ([]core.Message, error) {
	if sessionID == "" {
		return nil, core.ErrEmptySessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CloneMessages(s.sessions[sessionID]), nil
}

// Put replaces the stored transcript with a copy of messages.
func (s *InMemoryStore) Put(_ context.Context, sessionID string, messages []core.Message) error {
	if sessionID == "" {
		return core.ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = core.CloneMessages(messages)
	return nil
}

// Len reports the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
