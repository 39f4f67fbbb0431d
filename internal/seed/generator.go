package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
)

// Constants for rating generation ranges.
const (
	peakMin         = 55.0
	peakRange       = 44.0
	currentMinShare = 0.55
	currentRange    = 0.4
	seasonStep      = 3.0
	latestStartYear = 2024
	maxMatches      = 38
	minutesPerMatch = 90
)

// Record field styles. Upstream exports disagree on naming, so generated
// batches mix all three.
const (
	styleCanonical = iota
	styleUpstream
	styleSnake
	styleCount
)

var (
	clubs     = []string{"Ajax", "PSV", "Feyenoord", "AZ", "Twente", "Utrecht", "Vitesse", "Heerenveen"}
	nations   = []string{"NED", "BEL", "GER", "DEN", "MAR", "SUR"}
	positions = []string{"FW", "MF", "DF", "GK", "MF,FW", "Striker", "CB", "midfielder"}
)

// SeasonLabel returns the label k seasons before the latest one.
func SeasonLabel(k int) string {
	start := latestStartYear - k
	return fmt.Sprintf("%d-%d", start, start+1)
}

// Generate builds cfg.Seasons raw records for each of cfg.NumPlayers
// players. Player ids run from 1 to NumPlayers. Equal seeds produce equal
// records.
func Generate(ctx context.Context, cfg *Config) []normalize.Raw {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	seasons := max(cfg.Seasons, 1)

	records := make([]normalize.Raw, 0, cfg.NumPlayers*seasons)
	for i := 1; i <= cfg.NumPlayers; i++ {
		id := int64(i)
		name := fmt.Sprintf("Prospect %d", i)
		club := clubs[rng.IntN(len(clubs))]
		nation := nations[rng.IntN(len(nations))]
		pos := positions[rng.IntN(len(positions))]
		age := 16 + rng.Float64()*6
		peak := round1(peakMin + rng.Float64()*peakRange)

		for k := 0; k < seasons; k++ {
			// older seasons show a lower ceiling and fewer games
			seasonPeak := max(round1(peak-float64(k)*seasonStep*rng.Float64()), normalize.MinPeakWithRating)
			current := round1(seasonPeak * (currentMinShare + rng.Float64()*currentRange))
			matches := rng.IntN(maxMatches + 1)
			minutes := matches * (minutesPerMatch/2 + rng.IntN(minutesPerMatch/2+1))
			goals := rng.IntN(matches/2 + 1)

			r := genRecord{
				id: id, name: name, club: club, nation: nation, pos: pos,
				season: SeasonLabel(k), age: round1(age - float64(k)),
				current: current, peak: seasonPeak,
				matches: matches, minutes: minutes, goals: goals, assists: rng.IntN(matches/3 + 1),
			}
			records = append(records, r.raw(rng.IntN(styleCount)))
		}
	}

	logger.Get().Info(ctx, "generated player records",
		logger.Int("players", cfg.NumPlayers), logger.Int("records", len(records)))
	return records
}

// Expected normalizes the newest season of every generated player, which is
// what the roster serves for that id.
func Expected(records []normalize.Raw) map[int64]model.Player {
	out := make(map[int64]model.Player)
	for _, raw := range records {
		p := normalize.Normalize(raw)
		if cur, ok := out[p.ID]; ok && !model.SeasonNewer(p.Season, cur.Season) {
			continue
		}
		out[p.ID] = p
	}
	return out
}

type genRecord struct {
	id                               int64
	name, club, nation, pos, season  string
	age, current, peak               float64
	matches, minutes, goals, assists int
}

func (p genRecord) raw(style int) normalize.Raw {
	switch style {
	case styleUpstream:
		return normalize.Raw{
			"PlayerID": p.id, "Player": p.name, "Squad": p.club, "Nation": p.nation, "Pos": p.pos,
			"Season": p.season, "Age": p.age, "CurrentRating": p.current, "PredictedPotential": p.peak,
			"MP": p.matches, "Min": p.minutes, "Gls": p.goals, "Ast": p.assists,
		}
	case styleSnake:
		// numbers as strings, the way CSV-backed exports send them
		return normalize.Raw{
			"player_id": strconv.FormatInt(p.id, 10), "player_name": p.name, "team": p.club, "pos": p.pos,
			"season": p.season, "age": p.age,
			"performance_score":   strconv.FormatFloat(p.current, 'f', 1, 64),
			"predicted_potential": strconv.FormatFloat(p.peak, 'f', 1, 64),
			"matches_played_display": p.matches, "Min": strconv.Itoa(p.minutes),
			"Performance_Gls": p.goals, "Performance_Ast": p.assists,
		}
	default:
		return normalize.Raw{
			"id": p.id, "name": p.name, "club": p.club, "nation": p.nation, "position": p.pos,
			"season": p.season, "age": p.age, "current_rating": p.current, "peak_potential": p.peak,
			"matches": p.matches, "minutes": p.minutes, "goals": p.goals, "assists": p.assists,
		}
	}
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
