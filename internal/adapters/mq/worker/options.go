package worker

import (
	"github.com/okian/scout/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithArchiver keeps raw records of stored players.
func WithArchiver(a Archiver) Option {
	return func(w *InMemoryWorker) {
		w.archiver = a
	}
}

func withProcessedHook(fn func(busy bool)) Option {
	return func(w *InMemoryWorker) {
		w.onProcessed = fn
	}
}
