package selection

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrNotFound     = errors.New("selection not found")
	ErrInvalidOwner = errors.New("selection owner must not be empty")
	ErrInvalidSize  = errors.New("selection must hold between 1 and 4 players")
)
