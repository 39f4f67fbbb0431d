// Package storage persists raw upstream records and the watchlist in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/okian/scout/pkg/logger"
)

// DB wraps the SQLite connection. Schema migrations run on Open.
type DB struct {
	conn         *sql.DB
	path         string
	busyTimeout  time.Duration
	maxOpenConns int
	log          logger.Logger
}

// Open creates the database file if needed, migrates it and connects.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	db := &DB{
		path:         path,
		busyTimeout:  5 * time.Second,
		maxOpenConns: 4,
		log:          logger.Get().Named("storage"),
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := migrateUp(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		path, db.busyTimeout.Milliseconds())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(db.maxOpenConns)
	conn.SetMaxIdleConns(db.maxOpenConns)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.conn = conn

	db.log.Info(ctx, "database ready", logger.String("path", path))
	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
