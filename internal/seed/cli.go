package seed

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/scout/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file too. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	out := io.Writer(os.Stdout)
	closeFn := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return nil, err
		}
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Scout Seeding Tool
==================

Generates synthetic prospect records, submits them to a running scout
service and verifies the leaderboard and player views.

Usage:
  go run ./cmd/seed-players [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Number of distinct players to generate (default 1000)
  -seasons int
        Seasons generated per player (default 3)
  -batch int
        Records per request (default 200)
  -top int
        Leaderboard entries to fetch and verify (default 50)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -seed uint
        Generator seed (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        How long to wait for ingestion to finish (default 1m)
  -output string
        Write the generated records to this JSON file
  -log string
        Also write log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed a local instance with defaults
  go run ./cmd/seed-players

  # Larger run against another host
  go run ./cmd/seed-players -players 20000 -workers 16 -url http://scout:8080
`)
}
