// Package confidence maps sample size to a reliability tier.
package confidence

import "github.com/okian/scout/internal/domain/model"

// Tier thresholds on matches played.
const (
	HighMatches   = 20
	MediumMatches = 10
	LowMatches    = 5
)

// Classify returns the confidence tier for a number of matches played.
func Classify(matches int) model.Confidence {
	switch {
	case matches >= HighMatches:
		return model.ConfidenceHigh
	case matches >= MediumMatches:
		return model.ConfidenceMedium
	case matches >= LowMatches:
		return model.ConfidenceLow
	default:
		return model.ConfidenceVeryLow
	}
}
