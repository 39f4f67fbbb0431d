// Package similarity recommends comparable players by peak potential.
package similarity

import (
	"math"
	"sort"

	"github.com/okian/scout/internal/domain/model"
)

// Scoring constants. Changing any of them changes which players are shown
// as similar.
const (
	DiffPenalty   = 2.0
	MinSimilarity = 70.0
	MaxResults    = 5
)

// Score returns max(0, 100 - |a-b|*DiffPenalty).
func Score(refPeak, candPeak float64) float64 {
	return math.Max(0, 100-math.Abs(candPeak-refPeak)*DiffPenalty)
}

// RankSimilar returns up to MaxResults players from pool that share ref's
// position, are not ref itself, and score strictly above MinSimilarity.
// Ties keep pool order.
func RankSimilar(ref model.Player, pool []model.Player) []model.ComparisonEntry {
	out := make([]model.ComparisonEntry, 0, MaxResults)
	for _, cand := range pool {
		if cand.ID == ref.ID || cand.Position != ref.Position {
			continue
		}
		s := Score(ref.PeakPotential, cand.PeakPotential)
		if s <= MinSimilarity {
			continue
		}
		out = append(out, model.ComparisonEntry{
			Player:         cand,
			Similarity:     s,
			PotentialDelta: cand.PeakPotential - ref.PeakPotential,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}
