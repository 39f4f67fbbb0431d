package repository

import "time"

// Option applies a configuration option to the RosterStore.
type Option func(*RosterStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *RosterStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
