package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidPath = errors.New("database path must not be empty")
)
