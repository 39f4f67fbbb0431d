package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/scout/internal/seed"
)

// Default configuration constants.
const (
	defaultPlayers    = 1000
	defaultSeasons    = 3
	defaultBatchSize  = 200
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultSettle     = time.Minute
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players    = flag.Int("players", defaultPlayers, "Number of distinct players to generate")
		seasons    = flag.Int("seasons", defaultSeasons, "Seasons generated per player")
		batchSize  = flag.Int("batch", defaultBatchSize, "Records per request")
		topN       = flag.Int("top", defaultTopN, "Leaderboard entries to fetch and verify")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		seedValue  = flag.Uint64("seed", 1, "Generator seed")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", defaultSettle, "How long to wait for ingestion to finish")
		outputFile = flag.String("output", "", "Write the generated records to this JSON file")
		logFile    = flag.String("log", "", "Also write log output to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	closeLog, err := seed.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seed.Config{
		BaseURL:    *baseURL,
		NumPlayers: *players,
		Seasons:    *seasons,
		BatchSize:  *batchSize,
		Workers:    *workers,
		TopN:       *topN,
		Timeout:    *timeout,
		Settle:     *settle,
		Seed:       *seedValue,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if _, err := seed.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
