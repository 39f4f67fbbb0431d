// Package scouting turns normalized players into scouting reports and
// team level summaries.
package scouting

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/scout/internal/domain/model"
)

// Tier is a potential band with a display color.
type Tier struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GrowthRate summarizes how fast a player is expected to improve.
type GrowthRate string

// Growth rates.
const (
	GrowthRapid    GrowthRate = "rapid"
	GrowthModerate GrowthRate = "moderate"
	GrowthSlow     GrowthRate = "slow"
	GrowthPlateau  GrowthRate = "plateau"
)

// Growth is the expected improvement in rating points.
type Growth struct {
	ShortTerm float64    `json:"short_term"`
	LongTerm  float64    `json:"long_term"`
	Rate      GrowthRate `json:"growth_rate"`
}

// Profile lists qualitative observations.
type Profile struct {
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	DevelopmentAreas []string `json:"development_areas"`
}

// Recommendation is the scouting verdict.
type Recommendation struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Recommendation levels, strongest first.
const (
	LevelPrioritySigning = "PRIORITY SIGNING"
	LevelHighlyRecommend = "HIGHLY RECOMMEND"
	LevelRecommend       = "RECOMMEND"
	LevelMonitor         = "MONITOR"
	LevelObserve         = "OBSERVE"
)

// Performance aggregates output for the season and the career.
type Performance struct {
	Matches       int     `json:"matches"`
	Goals         int     `json:"goals"`
	GoalsPerMatch float64 `json:"goals_per_match"`
	TotalMatches  int     `json:"total_matches"`
	TotalGoals    int     `json:"total_goals"`
}

// Report is a full scouting report for one player-season.
type Report struct {
	Player              model.Player            `json:"player"`
	SeasonsCount        int                     `json:"seasons_count"`
	Tier                Tier                    `json:"tier"`
	Growth              Growth                  `json:"growth"`
	Analysis            Profile                 `json:"analysis"`
	Recommendation      Recommendation          `json:"recommendation"`
	ScoutNotes          string                  `json:"scout_notes"`
	Performance         Performance             `json:"performance"`
	SeasonChange        SeasonChange            `json:"season_change"`
	SimilarPlayers      []model.ComparisonEntry `json:"similar_players"`
	Progression         []model.Player          `json:"progression"`
	IsIncomplete        bool                    `json:"is_incomplete"`
	HasIncompleteSeason bool                    `json:"has_incomplete_season"`
}

// BuildReport assembles a report. progression holds every season of the
// same player (including p); currentSeason marks the in-progress season.
func BuildReport(p model.Player, progression []model.Player, similar []model.ComparisonEntry, currentSeason string) Report {
	tier := ClassifyTier(p.PeakPotential)
	growth := GrowthTrajectory(p)

	perf := Performance{Matches: p.Matches, Goals: p.Goals}
	if p.Matches > 0 {
		perf.GoalsPerMatch = float64(p.Goals) / float64(p.Matches)
	}
	hasIncomplete := false
	for _, s := range progression {
		perf.TotalMatches += s.Matches
		perf.TotalGoals += s.Goals
		if currentSeason != "" && s.Season == currentSeason {
			hasIncomplete = true
		}
	}

	if similar == nil {
		similar = []model.ComparisonEntry{}
	}
	return Report{
		Player:              p,
		SeasonsCount:        len(progression),
		Tier:                tier,
		Growth:              growth,
		Analysis:            AnalyzeProfile(p),
		Recommendation:      Recommend(p),
		ScoutNotes:          Notes(p, tier, growth),
		Performance:         perf,
		SeasonChange:        CompareSeasons(p, progression),
		SimilarPlayers:      similar,
		Progression:         progression,
		IsIncomplete:        currentSeason != "" && p.Season == currentSeason,
		HasIncompleteSeason: hasIncomplete,
	}
}

// ClassifyTier maps peak potential to a tier.
func ClassifyTier(peak float64) Tier {
	switch {
	case peak >= 90:
		return Tier{Name: "Elite Prospect", Color: "gold"}
	case peak >= 85:
		return Tier{Name: "Top Prospect", Color: "silver"}
	case peak >= 80:
		return Tier{Name: "Promising Talent", Color: "bronze"}
	case peak >= 75:
		return Tier{Name: "Developing Player", Color: "blue"}
	case peak >= 70:
		return Tier{Name: "Squad Player", Color: "green"}
	default:
		return Tier{Name: "Prospect", Color: "purple"}
	}
}

// GrowthTrajectory estimates short and long term gains and a rate that
// accounts for age: the younger the player, the bigger the gap needed to
// count as rapid.
func GrowthTrajectory(p model.Player) Growth {
	long := p.GrowthGap()
	short := 0.0
	if long > 0 {
		short = math.Min(long, 5)
	}

	var rate GrowthRate
	switch {
	case p.Age <= 17:
		rate = byGap(long, 15, 10, GrowthSlow)
	case p.Age <= 19:
		rate = byGap(long, 10, 5, GrowthSlow)
	default:
		rate = byGap(long, math.Inf(1), 5, GrowthPlateau)
	}
	return Growth{ShortTerm: round1(short), LongTerm: round1(long), Rate: rate}
}

func byGap(gap, rapid, moderate float64, floor GrowthRate) GrowthRate {
	switch {
	case gap >= rapid:
		return GrowthRapid
	case gap >= moderate:
		return GrowthModerate
	default:
		return floor
	}
}

// AnalyzeProfile lists strengths, weaknesses and development areas.
func AnalyzeProfile(p model.Player) Profile {
	var pr Profile

	if p.Position == model.PositionForward || p.Position == model.PositionMidfielder {
		switch {
		case p.GoalsPer90 > 0.5:
			pr.Strengths = append(pr.Strengths, "Excellent goal-scoring ability")
		case p.GoalsPer90 > 0.3:
			pr.Strengths = append(pr.Strengths, "Good attacking threat")
		default:
			pr.Weaknesses = append(pr.Weaknesses, "Limited goal-scoring output")
			pr.DevelopmentAreas = append(pr.DevelopmentAreas, "Improve finishing and positioning")
		}
	}

	switch {
	case p.Matches >= 20:
		pr.Strengths = append(pr.Strengths, "Regular first-team player")
	case p.Matches >= 10:
		pr.Strengths = append(pr.Strengths, "Gaining valuable playing time")
	default:
		pr.Weaknesses = append(pr.Weaknesses, "Limited playing time")
		pr.DevelopmentAreas = append(pr.DevelopmentAreas, "Need more match experience")
	}

	switch gap := p.GrowthGap(); {
	case gap > 15:
		pr.Strengths = append(pr.Strengths, "High growth potential")
		pr.DevelopmentAreas = append(pr.DevelopmentAreas, "Focus on consistent performances")
	case gap > 10:
		pr.Strengths = append(pr.Strengths, "Good development trajectory")
	}

	if p.Age <= 17 {
		pr.Strengths = append(pr.Strengths, "Young age with time to develop")
	}

	if len(pr.Strengths) == 0 {
		pr.Strengths = []string{"Developing player with potential"}
	}
	if len(pr.Weaknesses) == 0 {
		pr.Weaknesses = []string{"No major concerns identified"}
	}
	if len(pr.DevelopmentAreas) == 0 {
		pr.DevelopmentAreas = []string{"Continue current development path"}
	}
	return pr
}

// Recommend picks the scouting verdict.
func Recommend(p model.Player) Recommendation {
	switch {
	case p.PeakPotential >= 90 && p.Age <= 18:
		return Recommendation{Level: LevelPrioritySigning, Text: "Elite prospect with exceptional potential"}
	case p.PeakPotential >= 85 && p.Matches >= 15:
		return Recommendation{Level: LevelHighlyRecommend, Text: "Top talent with proven performance"}
	case p.PeakPotential >= 80:
		return Recommendation{Level: LevelRecommend, Text: "Promising player worth monitoring closely"}
	case p.PeakPotential >= 75 && p.Age <= 17:
		return Recommendation{Level: LevelMonitor, Text: "Young talent with good long-term potential"}
	default:
		return Recommendation{Level: LevelObserve, Text: "Continue tracking development"}
	}
}

// Notes writes the free-text scout summary.
func Notes(p model.Player, tier Tier, growth Growth) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s-year-old %s classified as a %s with a peak potential of %.1f. ",
		p.Name, trimFloat(p.Age), p.Position, tier.Name, p.PeakPotential)

	if p.Matches > 0 {
		fmt.Fprintf(&b, "This season, the player has featured in %d matches", p.Matches)
		if p.Position == model.PositionForward || p.Position == model.PositionMidfielder {
			fmt.Fprintf(&b, ", scoring %d goals", p.Goals)
		}
		b.WriteString(". ")
		if p.CurrentRating >= 75 {
			fmt.Fprintf(&b, "Current form is strong (rating: %.1f). ", p.CurrentRating)
		} else {
			fmt.Fprintf(&b, "With a current rating of %.1f, there is significant room for improvement. ", p.CurrentRating)
		}
	}

	fmt.Fprintf(&b, "The player shows %s growth potential with an expected improvement of %.1f points over the coming seasons. ",
		growth.Rate, growth.LongTerm)

	switch {
	case p.Age <= 17:
		b.WriteString("Being exceptionally young for this level, continued development is expected with proper coaching and playing time.")
	case p.Age <= 19:
		b.WriteString("At a key development age, the next 1-2 seasons will be crucial for the player's trajectory.")
	default:
		b.WriteString("Approaching peak development years, should begin showing consistent performances at this level.")
	}
	return b.String()
}

// SortSeasons orders a progression newest season first, with unlabelled
// seasons last.
func SortSeasons(progression []model.Player) {
	sort.SliceStable(progression, func(i, j int) bool {
		return model.SeasonNewer(progression[i].Season, progression[j].Season)
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
