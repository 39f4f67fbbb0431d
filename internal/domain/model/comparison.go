package model

import "time"

// ComparisonEntry is a candidate in a similarity ranking.
type ComparisonEntry struct {
	Player
	Similarity     float64 `json:"similarity"`
	PotentialDelta float64 `json:"potential_delta"`
}

// NarrativeKey identifies one of the fixed comparison narratives.
type NarrativeKey string

// Narrative keys.
const (
	NarrativeForward           NarrativeKey = "forward"
	NarrativeMidfielder        NarrativeKey = "midfielder"
	NarrativeDefender          NarrativeKey = "defender"
	NarrativeGoalkeeper        NarrativeKey = "goalkeeper"
	NarrativeAttackingVariance NarrativeKey = "attacking_variance"
	NarrativeProgressionMatrix NarrativeKey = "progression_matrix"
	NarrativeHybridRole        NarrativeKey = "hybrid_role"
)

// Narrative is canned tactical feedback for a comparison selection.
type Narrative struct {
	Key      NarrativeKey `json:"key"`
	Title    string       `json:"title"`
	Category string       `json:"category"`
	Summary  string       `json:"summary"`
}

// SelectionEntry is one cached player in a user's comparison selection.
// Stale and StaleReason are computed on read and never stored.
type SelectionEntry struct {
	PlayerID      int64     `json:"player_id"`
	Name          string    `json:"name"`
	Position      Position  `json:"position"`
	PeakPotential float64   `json:"peak_potential"`
	CurrentRating float64   `json:"current_rating"`
	CachedAt      time.Time `json:"cached_at"`

	Stale       bool   `json:"stale,omitempty"`
	StaleReason string `json:"stale_reason,omitempty"`
}
