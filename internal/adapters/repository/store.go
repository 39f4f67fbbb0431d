// Package repository holds the in-memory roster of normalized players.
package repository

import (
	"context"

	"github.com/okian/scout/internal/domain/model"
)

// Entry is a leaderboard row.
type Entry struct {
	Rank   int          `json:"rank"`
	Player model.Player `json:"player"`
}

// Filter narrows a roster listing. Zero values match everything.
type Filter struct {
	Position model.Position
	Club     string
	Season   string
	// Query matches a case-insensitive substring of the player name.
	Query string
}

// Store provides read/write access to the roster.
//
// The roster keeps every season of every player. Queries that do not name a
// season operate on each player's latest season.
type Store interface {
	// Upsert stores a player-season, replacing any previous version.
	// Returns true if the player-season was not known before.
	Upsert(ctx context.Context, p model.Player) (bool, error)

	// Get returns the latest season of a player.
	// Returns ErrNotFound if the player is unknown.
	Get(ctx context.Context, id int64) (model.Player, error)

	// GetSeason returns one season of a player.
	GetSeason(ctx context.Context, id int64, season string) (model.Player, error)

	// Seasons returns every season of a player, newest first.
	Seasons(ctx context.Context, id int64) ([]model.Player, error)

	// List returns one page of matching players ordered by peak potential
	// desc, then id asc, plus the total number of matches.
	List(ctx context.Context, f Filter, page, perPage int) ([]model.Player, int, error)

	// TopN returns the top-N players by peak potential. An empty position
	// ranks every player.
	TopN(ctx context.Context, n int, position model.Position) ([]Entry, error)

	// Rank returns the current rank of a player across the whole roster.
	Rank(ctx context.Context, id int64) (Entry, error)

	// All returns the latest season of every player in rank order.
	All(ctx context.Context) []model.Player

	// Count returns the number of distinct players.
	Count(ctx context.Context) int

	// Records returns the number of stored player-seasons.
	Records(ctx context.Context) int
}
