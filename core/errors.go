package core

import "errors"

var (
	// ErrLoopLimitExceeded is returned by the runtime when the iteration cap
	// is reached before the model produced a final answer.
	ErrLoopLimitExceeded = errors.New("agent loop limit exceeded")

	// ErrEmptySessionID is returned by session stores for an empty id.
	ErrEmptySessionID = errors.New("session id is empty")
)
