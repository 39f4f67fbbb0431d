// Package synth generates stable, plausible shot maps for players without
// granular event data.
package synth

import (
	"math"

	"github.com/okian/scout/internal/domain/model"
)

// Streams used for each coordinate.
const (
	BandGoalX    = 0
	BandGoalY    = 100
	BandMissX    = 200
	BandMissY    = 300
	BandKeyPassX = 400
	BandKeyPassY = 500
)

type region struct {
	xLo, xHi, yLo, yHi float64
	bandX, bandY       int
}

var (
	goalRegion    = region{75, 95, 10, 40, BandGoalX, BandGoalY}
	missRegion    = region{60, 95, 5, 45, BandMissX, BandMissY}
	keyPassRegion = region{55, 85, 5, 45, BandKeyPassX, BandKeyPassY}
)

// Counts returns how many goals, misses and key passes Synthesize emits.
func Counts(goalCount int, position model.Position) (goals, misses, keyPasses int) {
	if goalCount < 0 {
		goalCount = 0
	}
	goals = goalCount
	misses = max(8, int(math.Round(float64(goalCount)*2.5)))
	if position != model.PositionGoalkeeper {
		keyPasses = int(math.Round(float64(goalCount)*1.5 + 4))
	}
	return goals, misses, keyPasses
}

// Synthesize lays out goals, misses and (for outfield players) key passes
// for a player. The output is a pure function of its arguments.
func Synthesize(goalCount int, position model.Position, seed int64) []model.SyntheticEvent {
	goals, misses, keyPasses := Counts(goalCount, position)
	rng := NewPRNG(seed)
	events := make([]model.SyntheticEvent, 0, goals+misses+keyPasses)

	emit := func(n int, typ model.EventType, r region) {
		for i := 0; i < n; i++ {
			events = append(events, model.SyntheticEvent{
				ID:   len(events) + 1,
				Type: typ,
				X:    round1(rng.Uniform(r.bandX, i, r.xLo, r.xHi)),
				Y:    round1(rng.Uniform(r.bandY, i, r.yLo, r.yHi)),
			})
		}
	}
	emit(goals, model.EventGoal, goalRegion)
	emit(misses, model.EventMiss, missRegion)
	emit(keyPasses, model.EventKeyPass, keyPassRegion)
	return events
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
