package scouting

import (
	"fmt"

	"github.com/okian/scout/internal/domain/model"
)

// Trends.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// SeasonChange compares a season with the one before it.
type SeasonChange struct {
	Available           bool    `json:"available"`
	PreviousSeason      string  `json:"previous_season,omitempty"`
	CurrentSeason       string  `json:"current_season"`
	RatingChange        float64 `json:"rating_change"`
	GoalsChange         int     `json:"goals_change"`
	MatchesChange       int     `json:"matches_change"`
	GoalsPerMatchChange float64 `json:"goals_per_match_change"`
	Trend               string  `json:"trend"`
	TrendLabel          string  `json:"trend_label,omitempty"`
}

// CompareSeasons finds p's season in progression and compares it with the
// next older season. Unavailable when there is no older season.
func CompareSeasons(p model.Player, progression []model.Player) SeasonChange {
	none := SeasonChange{CurrentSeason: p.Season, Trend: TrendStable}
	if len(progression) < 2 {
		return none
	}

	sorted := append([]model.Player(nil), progression...)
	SortSeasons(sorted)

	idx := 0
	for i, s := range sorted {
		if s.Season == p.Season {
			idx = i
			break
		}
	}
	if idx >= len(sorted)-1 {
		return none
	}
	cur, prev := sorted[idx], sorted[idx+1]

	rating := round1(cur.CurrentRating - prev.CurrentRating)
	trend := TrendStable
	switch {
	case rating > 0:
		trend = TrendImproving
	case rating < 0:
		trend = TrendDeclining
	}

	return SeasonChange{
		Available:           true,
		PreviousSeason:      prev.Season,
		CurrentSeason:       cur.Season,
		RatingChange:        rating,
		GoalsChange:         cur.Goals - prev.Goals,
		MatchesChange:       cur.Matches - prev.Matches,
		GoalsPerMatchChange: round2(perMatch(cur) - perMatch(prev)),
		Trend:               trend,
		TrendLabel:          fmt.Sprintf("Performance %s since %s", trend, prev.Season),
	}
}

func perMatch(p model.Player) float64 {
	if p.Matches == 0 {
		return 0
	}
	return float64(p.Goals) / float64(p.Matches)
}
