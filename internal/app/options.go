package service

import (
	"time"

	"github.com/okian/scout/internal/adapters/selection"
	"github.com/okian/scout/internal/adapters/upstream"
	"github.com/okian/scout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many record fingerprints are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithArchive persists raw records and the watchlist. Archived records are
// replayed on Start.
func WithArchive(a Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithSelectionStore replaces the in-memory selection cache.
func WithSelectionStore(store selection.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.selections = store
		}
	}
}

// WithSelectionTTL marks cached selections stale after ttl. Zero disables expiry.
func WithSelectionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.selectionTTL = ttl
	}
}

// WithSources adds upstream sources used by Refresh.
func WithSources(sources ...upstream.Source) Option {
	return func(s *Service) {
		s.sources = append(s.sources, sources...)
	}
}

// WithRefreshSchedule refreshes from the sources on a cron schedule.
func WithRefreshSchedule(spec string) Option {
	return func(s *Service) {
		s.refreshSchedule = spec
	}
}

// WithRefreshOnStart fetches every source once when the service starts.
func WithRefreshOnStart(enabled bool) Option {
	return func(s *Service) {
		s.refreshOnStart = enabled
	}
}

// WithWatch refreshes when a watchable source changes.
func WithWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithCurrentSeason names the season still in progress.
func WithCurrentSeason(season string) Option {
	return func(s *Service) {
		s.currentSeason = season
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
