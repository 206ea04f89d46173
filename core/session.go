package core

import "context"

// SessionStore persists transcripts keyed by session id.
//
// Contract:
//   - Get returns an empty transcript (and no error) for unknown ids
//   - Put replaces the whole stored transcript with a single key write;
//     there are no merge or partial-update semantics
//   - Returned slices are copies and may be mutated by the caller
//
// Stores offer no compare-and-swap. Two invocations that read the same
// transcript and write back independently lose the earlier write.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) ([]Message, error)
	Put(ctx context.Context, sessionID string, messages []Message) error
}
