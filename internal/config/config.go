// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a config file and environment variables on top of New.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Selection cache backends.
const (
	SelectionBackendMemory = "memory"
	SelectionBackendRedis  = "redis"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of normalizer workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the number of record fingerprints remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DBPath is the SQLite archive location. Empty disables the archive.
	DBPath string `koanf:"db_path"`

	// UpstreamURL is the base URL of the prediction service. Empty disables HTTP refresh.
	UpstreamURL      string        `koanf:"upstream_url"`
	UpstreamRPS      float64       `koanf:"upstream_rps"`
	UpstreamTimeout  time.Duration `koanf:"upstream_timeout"`
	UpstreamPageSize int           `koanf:"upstream_page_size"`

	// SnapshotPath points at a JSON export of raw records loaded on start.
	SnapshotPath string `koanf:"snapshot_path"`

	// WatchSnapshot reloads SnapshotPath whenever it changes on disk.
	WatchSnapshot bool `koanf:"watch_snapshot"`

	// RefreshSchedule is a cron expression for periodic upstream refresh.
	RefreshSchedule string `koanf:"refresh_schedule"`

	// SelectionBackend is "memory" or "redis".
	SelectionBackend string        `koanf:"selection_backend"`
	RedisAddr        string        `koanf:"redis_addr"`
	RedisDB          int           `koanf:"redis_db"`
	SelectionTTL     time.Duration `koanf:"selection_ttl"`

	// CORSOrigins lists allowed browser origins. Comma separated in env.
	CORSOrigins []string `koanf:"cors_origins"`

	// MCPEnabled mounts the Model Context Protocol endpoint at /mcp.
	MCPEnabled bool `koanf:"mcp_enabled"`

	// CurrentSeason marks the in-progress season, e.g. "2025-2026".
	CurrentSeason string `koanf:"current_season"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           50_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          200_000,
		MaxLeaderboardLimit: 100,
		DBPath:              "scout.db",
		UpstreamRPS:         5,
		UpstreamTimeout:     10 * time.Second,
		UpstreamPageSize:    100,
		SelectionBackend:    SelectionBackendMemory,
		RedisAddr:           "localhost:6379",
		CORSOrigins:         []string{"*"},
		MCPEnabled:          true,
		CurrentSeason:       "2025-2026",
	}
	return c
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.DedupeSize <= 0 {
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.MaxLeaderboardLimit <= 0 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if c.UpstreamURL != "" && c.UpstreamRPS <= 0 {
		return fmt.Errorf("%w: upstream_rps must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.SelectionBackend) {
	case SelectionBackendMemory:
	case SelectionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr required for redis selection backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown selection_backend %q", ErrInvalidConfig, c.SelectionBackend)
	}
	if c.SelectionTTL < 0 {
		return fmt.Errorf("%w: selection_ttl must not be negative", ErrInvalidConfig)
	}
	return nil
}
