package service

import (
	"github.com/okian/scout/internal/adapters/storage"
	"github.com/okian/scout/internal/domain/model"
)

// Intake sources.
const (
	SourceAPI    = "api"
	SourceReplay = "replay"
)

// IngestResult summarizes one batch of raw records.
type IngestResult struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

// PlayerView is a player with its rank and every recorded season.
type PlayerView struct {
	Player      model.Player   `json:"player"`
	Rank        int            `json:"rank"`
	Progression []model.Player `json:"progression"`
}

// Page is one page of a player listing.
type Page struct {
	Items   []model.Player `json:"items"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

// ShotMap is the synthetic event set drawn for a player.
type ShotMap struct {
	PlayerID  int64                  `json:"player_id"`
	Position  model.Position         `json:"position"`
	Goals     int                    `json:"goals"`
	Misses    int                    `json:"misses"`
	KeyPasses int                    `json:"key_passes"`
	Events    []model.SyntheticEvent `json:"events"`
}

// Comparison is a set of players with the matching narrative.
type Comparison struct {
	Players   []model.Player  `json:"players"`
	Narrative model.Narrative `json:"narrative"`
}

// WatchedPlayer is a watchlist entry with the player's latest season, when known.
type WatchedPlayer struct {
	storage.WatchEntry
	Player *model.Player `json:"player,omitempty"`
}
