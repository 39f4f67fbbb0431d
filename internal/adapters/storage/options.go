package storage

import "time"

// Option applies a configuration option to the DB.
type Option func(*DB)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.busyTimeout = d
		}
	}
}

// WithMaxOpenConns caps the connection pool.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.maxOpenConns = n
		}
	}
}
