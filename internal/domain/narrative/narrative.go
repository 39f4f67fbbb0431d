// Package narrative picks canned tactical feedback for a comparison
// selection based on the positions involved.
package narrative

import "github.com/okian/scout/internal/domain/model"

var (
	forward = model.Narrative{
		Key:      model.NarrativeForward,
		Title:    "Finishing Profile",
		Category: "Attack",
		Summary:  "Like-for-like forwards: compare goal output per 90 and shot volume to separate clinical finishers from players who rely on chance creation.",
	}
	midfielder = model.Narrative{
		Key:      model.NarrativeMidfielder,
		Title:    "Engine Room",
		Category: "Control",
		Summary:  "Midfield comparison: weigh playing time and assists against potential to see who already dictates tempo and who is still growing into the role.",
	}
	defender = model.Narrative{
		Key:      model.NarrativeDefender,
		Title:    "Defensive Foundation",
		Category: "Defense",
		Summary:  "Defensive comparison: minutes and starts matter more than output here, since reliability is the first thing a defender has to prove.",
	}
	goalkeeper = model.Narrative{
		Key:      model.NarrativeGoalkeeper,
		Title:    "Last Line",
		Category: "Goalkeeping",
		Summary:  "Goalkeeper comparison: sample size dominates. Treat low-confidence ratings with care and favour keepers with sustained starts.",
	}
	attackingVariance = model.Narrative{
		Key:      model.NarrativeAttackingVariance,
		Title:    "Attacking Variance",
		Category: "Attack",
		Summary:  "Forwards against midfielders: goal output is not comparable one to one. Read goals per 90 for the forwards and assists plus development score for the midfielders.",
	}
	progressionMatrix = model.Narrative{
		Key:      model.NarrativeProgressionMatrix,
		Title:    "Progression Matrix",
		Category: "Build-up",
		Summary:  "Midfielders against defenders: both lines progress the ball. Compare growth gap and playing time to judge who is ready for a bigger role.",
	}
	hybridRole = model.Narrative{
		Key:      model.NarrativeHybridRole,
		Title:    "Hybrid Role",
		Category: "Mixed",
		Summary:  "A cross-positional selection: compare peak potential and confidence rather than raw output, which depends heavily on role.",
	}
)

// All lists every narrative in the fixed set.
func All() []model.Narrative {
	return []model.Narrative{forward, midfielder, defender, goalkeeper, attackingVariance, progressionMatrix, hybridRole}
}

// Select returns the narrative for a selection. Rules, first match wins:
// one distinct position gets its own narrative; exactly {FW, MF} is
// Attacking Variance; exactly {MF, DF} is Progression Matrix; anything
// else is Hybrid Role.
func Select(players []model.Player) model.Narrative {
	distinct := map[model.Position]struct{}{}
	for _, p := range players {
		distinct[p.Position] = struct{}{}
	}
	has := func(pos model.Position) bool {
		_, ok := distinct[pos]
		return ok
	}

	switch len(distinct) {
	case 1:
		switch {
		case has(model.PositionForward):
			return forward
		case has(model.PositionMidfielder):
			return midfielder
		case has(model.PositionDefender):
			return defender
		case has(model.PositionGoalkeeper):
			return goalkeeper
		}
	case 2:
		switch {
		case has(model.PositionForward) && has(model.PositionMidfielder):
			return attackingVariance
		case has(model.PositionMidfielder) && has(model.PositionDefender):
			return progressionMatrix
		}
	}
	return hybridRole
}
