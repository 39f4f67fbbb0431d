// Package normalize reconciles raw upstream player records into
// invariant-respecting model.Player values.
//
// Normalize is total over any map input and idempotent:
// Normalize(Flatten(Normalize(r))) equals Normalize(r).
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/scout/internal/domain/coerce"
	"github.com/okian/scout/internal/domain/confidence"
	"github.com/okian/scout/internal/domain/model"
)

// Defaults for identity and categorical fields.
const (
	DefaultAge    = 18.0
	DefaultName   = "Unknown"
	DefaultClub   = "N/A"
	DefaultNation = "N/A"
	DefaultSeason = model.SeasonUnknown

	// MinPeakWithRating is the lowest believable peak for a rated player.
	MinPeakWithRating = 50.0
	// PeakUplift is added to current when an implausible peak is rebuilt.
	PeakUplift = 10.0
	// NextSeasonStep is the projected one-season rating gain.
	NextSeasonStep = 2.0
	// MaxRating bounds every 0-100 score.
	MaxRating = 100.0
	// MaxMLDevelopment caps the fallback development score.
	MaxMLDevelopment = 95.0
	// LowSampleMatches flags records with fewer matches than this.
	LowSampleMatches = 3
)

// RepairKind names an invariant repair applied during normalization.
type RepairKind string

// Repairs, in the order they are applied.
const (
	RepairNegativeRating RepairKind = "negative_rating"
	RepairPeakRaised     RepairKind = "peak_raised"
	RepairPeakCapped     RepairKind = "peak_capped"
	RepairCurrentClamped RepairKind = "current_clamped"
)

// IssueKind names a data-quality warning.
type IssueKind string

// Detected data-quality warnings.
const (
	IssueCurrentAbovePeak     IssueKind = "current_above_peak"
	IssueRatingsWithoutGames  IssueKind = "ratings_without_matches"
	IssueUnknownPositionValue IssueKind = "unknown_position"
)

// Report describes what normalization changed or noticed. It feeds
// diagnostics only; the Player carries the human-readable issues.
type Report struct {
	Repairs []RepairKind
	Issues  []IssueKind
}

// Normalize converts a raw record into a Player.
func Normalize(raw Raw) model.Player {
	p, _ := NormalizeWithReport(raw)
	return p
}

// NormalizeWithReport is Normalize plus a record of applied repairs and
// detected issues.
func NormalizeWithReport(raw Raw) (model.Player, Report) {
	var rep Report
	if raw == nil {
		raw = Raw{}
	}

	p := model.Player{
		ID:      ID(raw),
		Name:    text(raw.value(FieldName), DefaultName),
		Club:    text(raw.value(FieldClub), DefaultClub),
		Nation:  text(raw.value(FieldNation), DefaultNation),
		Season:  text(raw.value(FieldSeason), DefaultSeason),
		Age:     coerce.Float(raw.value(FieldAge), DefaultAge),
		Matches: coerce.NonNegativeInt(raw.value(FieldMatches)),
		Minutes: coerce.NonNegativeInt(raw.value(FieldMinutes)),
		Goals:   coerce.NonNegativeInt(raw.value(FieldGoals)),
		Assists: coerce.NonNegativeInt(raw.value(FieldAssists)),
		Starts:  coerce.NonNegativeInt(raw.value(FieldStarts)),
	}

	posRaw, hasPos := raw.Lookup(FieldPosition)
	p.Position = ParsePosition(text(posRaw, ""))
	if hasPos && p.Position == model.PositionUnknown && !strings.EqualFold(text(posRaw, ""), string(model.PositionUnknown)) {
		rep.Issues = append(rep.Issues, IssueUnknownPositionValue)
	}

	current := coerce.Float(raw.value(FieldCurrentRating), 0)
	peak := coerce.Float(raw.value(FieldPeakPotential), 0)
	if current < 0 || peak < 0 {
		rep.Repairs = append(rep.Repairs, RepairNegativeRating)
		current = math.Max(current, 0)
		peak = math.Max(peak, 0)
	}

	var detected []string
	if current > peak {
		rep.Issues = append(rep.Issues, IssueCurrentAbovePeak)
		detected = append(detected, fmt.Sprintf("current rating %s exceeds peak potential %s", num(current), num(peak)))
	}

	// (a) raise an implausible peak, (b) cap it, (c) clamp current, (d) project.
	if peak < MinPeakWithRating && current > 0 {
		peak = math.Min(math.Max(current+PeakUplift, MinPeakWithRating), MaxRating)
		rep.Repairs = append(rep.Repairs, RepairPeakRaised)
	}
	if peak > MaxRating {
		peak = MaxRating
		rep.Repairs = append(rep.Repairs, RepairPeakCapped)
	}
	if current > peak {
		current = peak
		rep.Repairs = append(rep.Repairs, RepairCurrentClamped)
	}
	p.CurrentRating = current
	p.PeakPotential = peak
	p.NextSeasonRating = math.Min(current+NextSeasonStep, peak)

	if (current > 0 || peak > 0) && p.Matches == 0 {
		rep.Issues = append(rep.Issues, IssueRatingsWithoutGames)
		detected = append(detected, "ratings reported with zero matches played")
	}

	if v, ok := raw.Lookup(FieldGoalsPer90); ok && coerce.Present(v) {
		p.GoalsPer90 = math.Max(coerce.Float(v, 0), 0)
	} else if p.Minutes > 0 {
		p.GoalsPer90 = float64(p.Goals) / (float64(p.Minutes) / 90)
	}

	p.MLDevelopmentScore = score(raw, FieldMLDevelopment, func() float64 {
		return math.Min(peak*0.3+current*0.7, MaxMLDevelopment)
	})
	p.BasePerformanceScore = score(raw, FieldBasePerf, func() float64 {
		return math.Min(current*0.9, peak*0.8)
	})
	p.PlayingTimeScore = score(raw, FieldPlayingTime, func() float64 {
		return math.Min(float64(p.Minutes)/math.Max(float64(p.Matches)*60, 1)*100, MaxRating)
	})

	p.Confidence = confidence.Classify(p.Matches)
	p.LowSampleSize = p.Matches < LowSampleMatches
	p.Issues = mergeIssues(issueList(raw.value(FieldIssues)), detected)
	return p, rep
}

// ID resolves the player id, or 0 when absent.
func ID(raw Raw) int64 {
	f := math.Round(coerce.Float(raw.value(FieldID), 0))
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// Season resolves the season label with the usual fallback.
func Season(raw Raw) string {
	return text(raw.value(FieldSeason), DefaultSeason)
}

// ParsePosition maps upstream position labels to a Position. Multi-role
// labels such as "MF,FW" use the first role.
func ParsePosition(s string) model.Position {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.IndexAny(s, ",/ "); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "FW", "F", "ST", "CF", "FORWARD", "STRIKER":
		return model.PositionForward
	case "MF", "M", "CM", "MIDFIELDER":
		return model.PositionMidfielder
	case "DF", "D", "CB", "DEFENDER":
		return model.PositionDefender
	case "GK", "G", "GOALKEEPER":
		return model.PositionGoalkeeper
	default:
		return model.PositionUnknown
	}
}

// Flatten returns the canonical raw form of p.
func Flatten(p model.Player) Raw {
	r := Raw{
		string(FieldID):            p.ID,
		string(FieldName):          p.Name,
		string(FieldClub):          p.Club,
		string(FieldNation):        p.Nation,
		string(FieldPosition):      string(p.Position),
		string(FieldSeason):        p.Season,
		string(FieldAge):           p.Age,
		string(FieldCurrentRating): p.CurrentRating,
		string(FieldPeakPotential): p.PeakPotential,
		string(FieldMatches):       p.Matches,
		string(FieldMinutes):       p.Minutes,
		string(FieldGoals):         p.Goals,
		string(FieldAssists):       p.Assists,
		string(FieldStarts):        p.Starts,
		string(FieldGoalsPer90):    p.GoalsPer90,
		string(FieldMLDevelopment): p.MLDevelopmentScore,
		string(FieldBasePerf):      p.BasePerformanceScore,
		string(FieldPlayingTime):   p.PlayingTimeScore,
	}
	if len(p.Issues) > 0 {
		r[string(FieldIssues)] = append([]string(nil), p.Issues...)
	}
	return r
}

func score(raw Raw, f Field, fallback func() float64) float64 {
	if v, ok := raw.Lookup(f); ok && coerce.Present(v) {
		return coerce.Clamp(coerce.Float(v, 0), 0, MaxRating)
	}
	return fallback()
}

// text renders scalar values as trimmed strings, falling back to def for
// absent, blank or composite values.
func text(v any, def string) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int, int64, int32:
		s = fmt.Sprint(t)
	default:
		return def
	}
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func issueList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	default:
		return nil
	}
}

// mergeIssues keeps first-seen order and drops blanks and duplicates.
func mergeIssues(lists ...[]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, l := range lists {
		for _, s := range l {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
