// Package model contains domain models passed between layers.
package model

// Position is a player's primary role on the pitch.
type Position string

// Known positions. Unknown is used when the upstream value cannot be mapped.
const (
	PositionForward    Position = "FW"
	PositionMidfielder Position = "MF"
	PositionDefender   Position = "DF"
	PositionGoalkeeper Position = "GK"
	PositionUnknown    Position = "Unknown"
)

// Positions lists the concrete positions in display order.
var Positions = []Position{PositionForward, PositionMidfielder, PositionDefender, PositionGoalkeeper}

// Confidence is an ordinal reliability tier derived from matches played.
type Confidence string

// Confidence tiers, lowest first.
const (
	ConfidenceVeryLow Confidence = "VeryLow"
	ConfidenceLow     Confidence = "Low"
	ConfidenceMedium  Confidence = "Medium"
	ConfidenceHigh    Confidence = "High"
)

// Rank orders confidence tiers: VeryLow=0 ... High=3. Unknown values rank -1.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceVeryLow:
		return 0
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	default:
		return -1
	}
}

// Player is a normalized per-season player record. JSON keys are the
// canonical raw field names, so a serialized Player re-normalizes to itself.
type Player struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Club     string   `json:"club"`
	Nation   string   `json:"nation"`
	Position Position `json:"position"`
	Season   string   `json:"season"`
	Age      float64  `json:"age"`

	CurrentRating    float64 `json:"current_rating"`
	PeakPotential    float64 `json:"peak_potential"`
	NextSeasonRating float64 `json:"next_season_rating"`

	Matches int `json:"matches"`
	Minutes int `json:"minutes"`
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
	Starts  int `json:"starts"`

	GoalsPer90           float64 `json:"goals_per_90"`
	MLDevelopmentScore   float64 `json:"ml_development_score"`
	BasePerformanceScore float64 `json:"base_performance_score"`
	PlayingTimeScore     float64 `json:"playing_time_score"`

	Confidence    Confidence `json:"confidence"`
	LowSampleSize bool       `json:"low_sample_size"`

	// Issues holds data-quality warnings found while normalizing.
	Issues []string `json:"issues,omitempty"`
}

// GrowthGap is the distance between peak potential and current rating.
func (p Player) GrowthGap() float64 {
	return p.PeakPotential - p.CurrentRating
}
