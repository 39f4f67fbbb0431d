package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrBackpressure      = errors.New("ingest queue is full")
	ErrNotFound          = errors.New("not found")
	ErrInvalidComparison = errors.New("comparison needs between 1 and 4 distinct players")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoArchive         = errors.New("archive is not configured")
)
