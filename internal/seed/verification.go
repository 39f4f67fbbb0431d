package seed

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
)

// verifyLeaderboard checks ordering, competition ranks and peaks against
// the generated records.
func verifyLeaderboard(leaderboard []Entry, expected map[int64]model.Player, topN int) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}
	if want := min(topN, len(expected)); len(leaderboard) < want {
		return fmt.Errorf("leaderboard has %d entries, want at least %d", len(leaderboard), want)
	}

	for i, e := range leaderboard {
		if i > 0 {
			prev := leaderboard[i-1]
			if e.Player.PeakPotential > prev.Player.PeakPotential {
				return fmt.Errorf("leaderboard not sorted: entry %d has higher peak than entry %d", i, i-1)
			}
			wantRank := i + 1
			if e.Player.PeakPotential == prev.Player.PeakPotential {
				wantRank = prev.Rank
			}
			if e.Rank != wantRank {
				return fmt.Errorf("entry %d (player %d) has rank %d, want %d", i, e.Player.ID, e.Rank, wantRank)
			}
		} else if e.Rank != 1 {
			return fmt.Errorf("top entry has rank %d", e.Rank)
		}

		if want, ok := expected[e.Player.ID]; ok && want.PeakPotential != e.Player.PeakPotential {
			return fmt.Errorf("player %d peak %.1f, generated %.1f", e.Player.ID, e.Player.PeakPotential, want.PeakPotential)
		}
	}

	best := topPeak(expected)
	if leaderboard[0].Player.PeakPotential < best {
		return fmt.Errorf("top leaderboard peak %.1f below best generated peak %.1f",
			leaderboard[0].Player.PeakPotential, best)
	}
	return nil
}

// verifyPlayers reads back up to SpotChecks leaderboard players and checks
// that the detail view agrees with the leaderboard and the generated data.
func verifyPlayers(ctx context.Context, config *Config, client *HTTPClient, leaderboard []Entry, expected map[int64]model.Player) (int, error) {
	verified := 0
	for _, e := range leaderboard {
		want, ok := expected[e.Player.ID]
		if !ok {
			continue
		}
		if verified == SpotChecks {
			break
		}

		var view PlayerView
		if err := client.GetJSON(ctx, fmt.Sprintf("%s/players/%d", config.BaseURL, e.Player.ID), &view); err != nil {
			return verified, err
		}
		if view.Rank != e.Rank {
			return verified, fmt.Errorf("player %d rank %d, leaderboard says %d", e.Player.ID, view.Rank, e.Rank)
		}
		if view.Player.Season != want.Season {
			return verified, fmt.Errorf("player %d served season %q, want %q", e.Player.ID, view.Player.Season, want.Season)
		}
		if len(view.Progression) < max(config.Seasons, 1) {
			return verified, fmt.Errorf("player %d has %d seasons, want %d", e.Player.ID, len(view.Progression), config.Seasons)
		}
		verified++
	}

	if config.Verbose {
		displayTopProspects(ctx, leaderboard)
	}
	return verified, nil
}

func topPeak(expected map[int64]model.Player) float64 {
	peaks := make([]float64, 0, len(expected))
	for _, p := range expected {
		peaks = append(peaks, p.PeakPotential)
	}
	if len(peaks) == 0 {
		return 0
	}
	sort.Float64s(peaks)
	return peaks[len(peaks)-1]
}

// displayTopProspects logs the head of the leaderboard.
func displayTopProspects(ctx context.Context, leaderboard []Entry) {
	log := logger.Get().Named("seed")
	for _, e := range leaderboard[:min(SpotChecks, len(leaderboard))] {
		log.Info(ctx, "top prospect",
			logger.Int("rank", e.Rank),
			logger.Int64("id", e.Player.ID),
			logger.String("name", e.Player.Name),
			logger.Float64("peak", e.Player.PeakPotential))
	}
}
