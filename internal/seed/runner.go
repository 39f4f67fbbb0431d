// Package seed generates synthetic prospect records, pushes them through
// the HTTP API and checks that the leaderboard and player views agree with
// what was sent.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes a complete seeding run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}
	log := logger.Get().Named("seed")
	client := newHTTPClient(config.Timeout, stats.RunID)

	log.Info(ctx, "starting seeding run",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.NumPlayers),
		logger.Int("seasons", config.Seasons),
		logger.Int("workers", config.Workers),
		logger.Any("seed", config.Seed))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate records
	records := Generate(ctx, config)
	stats.RecordsGenerated = len(records)
	expected := Expected(records)

	// Step 3: Submit records concurrently
	if err := submitRecords(ctx, config, client, records, stats); err != nil {
		return stats, fmt.Errorf("record submission failed: %w", err)
	}

	// Step 4: Wait for the workers to drain
	if err := waitForRoster(ctx, config, client, len(expected)); err != nil {
		return stats, fmt.Errorf("roster did not settle: %w", err)
	}

	// Step 5: Get leaderboard
	leaderboard, err := getLeaderboard(ctx, config, client)
	if err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(leaderboard)

	// Step 6: Verify results
	if err := verifyLeaderboard(leaderboard, expected, config.TopN); err != nil {
		return stats, fmt.Errorf("leaderboard verification failed: %w", err)
	}
	verified, err := verifyPlayers(ctx, config, client, leaderboard, expected)
	stats.PlayersVerified = verified
	if err != nil {
		return stats, fmt.Errorf("player verification failed: %w", err)
	}

	// Step 7: Save records to file
	if config.OutputFile != "" {
		if err := saveRecordsToFile(ctx, config.OutputFile, records); err != nil {
			log.Warn(ctx, "failed to save records to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "seeding run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config, client *HTTPClient) error {
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// /healthz serves Prometheus metrics; any 200 counts as healthy
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// waitForRoster polls /stats until every queued record has been processed
// and the roster holds at least want players, or config.Settle elapses.
func waitForRoster(ctx context.Context, config *Config, client *HTTPClient, want int) error {
	ctx, cancel := context.WithTimeout(ctx, config.Settle)
	defer cancel()

	ticker := time.NewTicker(SettlePollInterval)
	defer ticker.Stop()

	for {
		var stats map[string]any
		if err := client.GetJSON(ctx, config.BaseURL+"/stats", &stats); err == nil {
			players, _ := stats["totalPlayers"].(float64)
			enqueued, _ := stats["enqueued"].(float64)
			processed, _ := stats["processed"].(float64)
			if int(players) >= want && processed >= enqueued {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// getLeaderboard fetches the top config.TopN players.
func getLeaderboard(ctx context.Context, config *Config, client *HTTPClient) ([]Entry, error) {
	var entries []Entry
	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.BaseURL, config.TopN)
	if err := client.GetJSON(ctx, url, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// saveRecordsToFile writes the generated records as a JSON array.
func saveRecordsToFile(ctx context.Context, filename string, records []normalize.Raw) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	logger.Get().Info(ctx, "records saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, recordsPerSecond float64
	if stats.RecordsGenerated > 0 {
		acceptRate = float64(stats.RecordsAccepted) / float64(stats.RecordsGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.RecordsGenerated) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("recordsGenerated", stats.RecordsGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("recordsAccepted", stats.RecordsAccepted),
		logger.Int("recordsDuplicate", stats.RecordsDuplicate),
		logger.Int("recordsRejected", stats.RecordsRejected),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("playersVerified", stats.PlayersVerified),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("recordsPerSecond", recordsPerSecond))
}
