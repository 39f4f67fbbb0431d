package scouting

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/scout/internal/domain/model"
)

// TopProspectsPerGroup is how many players team and position summaries list.
const TopProspectsPerGroup = 3

// TeamSummary aggregates a club's players.
type TeamSummary struct {
	Club          string                 `json:"club"`
	Players       int                    `json:"players"`
	AvgPeak       float64                `json:"avg_peak_potential"`
	AvgCurrent    float64                `json:"avg_current_rating"`
	AvgAge        float64                `json:"avg_age"`
	PeakStdDev    float64                `json:"peak_std_dev"`
	Positions     map[model.Position]int `json:"positions"`
	TopProspects  []model.Player         `json:"top_prospects"`
	AvgGoalsPer90 float64                `json:"avg_goals_per_90"`
}

// TeamListing is the short form used in team lists.
type TeamListing struct {
	Club    string  `json:"club"`
	Players int     `json:"players"`
	AvgPeak float64 `json:"avg_peak_potential"`
}

// Team summarizes one club. players should already be filtered to it.
func Team(club string, players []model.Player) TeamSummary {
	s := TeamSummary{Club: club, Players: len(players), Positions: map[model.Position]int{}, TopProspects: []model.Player{}}
	if len(players) == 0 {
		return s
	}

	peaks := make([]float64, len(players))
	current := make([]float64, len(players))
	ages := make([]float64, len(players))
	g90 := make([]float64, len(players))
	for i, p := range players {
		peaks[i] = p.PeakPotential
		current[i] = p.CurrentRating
		ages[i] = p.Age
		g90[i] = p.GoalsPer90
		s.Positions[p.Position]++
	}

	s.AvgPeak = round1(stat.Mean(peaks, nil))
	s.AvgCurrent = round1(stat.Mean(current, nil))
	s.AvgAge = round1(stat.Mean(ages, nil))
	s.AvgGoalsPer90 = round2(stat.Mean(g90, nil))
	// sample std dev is undefined for one player
	if len(peaks) > 1 {
		s.PeakStdDev = round2(stat.StdDev(peaks, nil))
	}
	s.TopProspects = Top(players, TopProspectsPerGroup)
	return s
}

// Teams lists every club, best average peak first, ties by name.
func Teams(players []model.Player) []TeamListing {
	byClub := map[string][]float64{}
	for _, p := range players {
		byClub[p.Club] = append(byClub[p.Club], p.PeakPotential)
	}
	out := make([]TeamListing, 0, len(byClub))
	for club, peaks := range byClub {
		out = append(out, TeamListing{Club: club, Players: len(peaks), AvgPeak: round1(stat.Mean(peaks, nil))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgPeak != out[j].AvgPeak {
			return out[i].AvgPeak > out[j].AvgPeak
		}
		return out[i].Club < out[j].Club
	})
	return out
}

// PositionsSummary returns the top n players for every known position.
func PositionsSummary(players []model.Player, n int) map[model.Position][]model.Player {
	byPos := map[model.Position][]model.Player{}
	for _, p := range players {
		byPos[p.Position] = append(byPos[p.Position], p)
	}
	out := make(map[model.Position][]model.Player, len(model.Positions))
	for _, pos := range model.Positions {
		out[pos] = Top(byPos[pos], n)
	}
	return out
}

// Top returns the n best players by peak potential, ties by id.
func Top(players []model.Player, n int) []model.Player {
	sorted := append([]model.Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PeakPotential != sorted[j].PeakPotential {
			return sorted[i].PeakPotential > sorted[j].PeakPotential
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []model.Player{}
	}
	return sorted
}
