package tool

import "errors"

// Sentinel errors for registry construction.
var (
	ErrEmptyName     = errors.New("tool name is empty")
	ErrAlreadyExists = errors.New("tool already registered")
	ErrInvalidSchema = errors.New("tool parameter schema is invalid")
)
