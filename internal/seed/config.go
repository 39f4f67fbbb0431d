package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumPlayers int           // Number of distinct players to generate
	Seasons    int           // Seasons generated per player
	BatchSize  int           // Records per POST /players request
	Workers    int           // Number of concurrent submitters
	TopN       int           // Leaderboard entries to fetch and verify
	Timeout    time.Duration // HTTP request timeout
	Settle     time.Duration // How long to wait for the roster to fill up
	Seed       uint64        // Generator seed; equal seeds yield equal records
	OutputFile string        // Output file for generated records
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Ack is the response of POST /players.
type Ack struct {
	Status     string `json:"status"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
}

// Entry is a leaderboard entry.
type Entry struct {
	Rank   int    `json:"rank"`
	Player Player `json:"player"`
}

// Player carries the fields the verifier reads back.
type Player struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Season        string  `json:"season"`
	PeakPotential float64 `json:"peak_potential"`
}

// PlayerView is the response of GET /players/{id}.
type PlayerView struct {
	Player      Player   `json:"player"`
	Rank        int      `json:"rank"`
	Progression []Player `json:"progression"`
}

// Stats holds run statistics.
type Stats struct {
	RunID              string
	RecordsGenerated   int
	BatchesSubmitted   int
	BatchesFailed      int
	RecordsAccepted    int
	RecordsDuplicate   int
	RecordsRejected    int
	PlayersVerified    int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
