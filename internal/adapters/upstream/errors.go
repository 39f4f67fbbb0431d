package upstream

import "errors"

// Sentinel kinds for upstream errors.
var (
	ErrInvalidURL     = errors.New("invalid upstream url")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrMalformed      = errors.New("malformed upstream payload")
)
