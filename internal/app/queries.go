package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/narrative"
	"github.com/okian/scout/internal/domain/scouting"
	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/internal/domain/synth"
)

// MaxCompared is the largest number of players Compare accepts.
const MaxCompared = 4

func (s *Service) store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.roster, nil
}

func (s *Service) player(ctx context.Context, id int64) (model.Player, error) {
	roster, err := s.store()
	if err != nil {
		return model.Player{}, err
	}
	p, err := roster.Get(ctx, id)
	if err != nil {
		return model.Player{}, wrapRoster(err)
	}
	return p, nil
}

func wrapRoster(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrInvalidLimit):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}

// Player returns a player's latest season with its rank and progression.
func (s *Service) Player(ctx context.Context, id int64) (PlayerView, error) {
	roster, err := s.store()
	if err != nil {
		return PlayerView{}, err
	}
	p, err := roster.Get(ctx, id)
	if err != nil {
		return PlayerView{}, wrapRoster(err)
	}
	entry, err := roster.Rank(ctx, id)
	if err != nil {
		return PlayerView{}, wrapRoster(err)
	}
	seasons, err := roster.Seasons(ctx, id)
	if err != nil {
		return PlayerView{}, wrapRoster(err)
	}
	return PlayerView{Player: p, Rank: entry.Rank, Progression: seasons}, nil
}

// Players returns one page of the roster.
func (s *Service) Players(ctx context.Context, f repository.Filter, page, perPage int) (Page, error) {
	roster, err := s.store()
	if err != nil {
		return Page{}, err
	}
	if page < 1 {
		return Page{}, fmt.Errorf("%w: page must be positive", ErrInvalidArgument)
	}
	items, total, err := roster.List(ctx, f, page, perPage)
	if err != nil {
		return Page{}, wrapRoster(err)
	}
	if items == nil {
		items = []model.Player{}
	}
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	return Page{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	}, nil
}

// Similar ranks same-position players by potential closeness.
func (s *Service) Similar(ctx context.Context, id int64) ([]model.ComparisonEntry, error) {
	roster, err := s.store()
	if err != nil {
		return nil, err
	}
	p, err := roster.Get(ctx, id)
	if err != nil {
		return nil, wrapRoster(err)
	}
	return similarity.RankSimilar(p, roster.All(ctx)), nil
}

// ShotMap draws the player's synthetic events. The player id seeds the draw
// so the same player always gets the same map.
func (s *Service) ShotMap(ctx context.Context, id int64) (ShotMap, error) {
	p, err := s.player(ctx, id)
	if err != nil {
		return ShotMap{}, err
	}
	goals, misses, keyPasses := synth.Counts(p.Goals, p.Position)
	return ShotMap{
		PlayerID:  p.ID,
		Position:  p.Position,
		Goals:     goals,
		Misses:    misses,
		KeyPasses: keyPasses,
		Events:    synth.Synthesize(p.Goals, p.Position, p.ID),
	}, nil
}

// Report builds the scouting report for a player's latest season.
func (s *Service) Report(ctx context.Context, id int64) (scouting.Report, error) {
	roster, err := s.store()
	if err != nil {
		return scouting.Report{}, err
	}
	p, err := roster.Get(ctx, id)
	if err != nil {
		return scouting.Report{}, wrapRoster(err)
	}
	seasons, err := roster.Seasons(ctx, id)
	if err != nil {
		return scouting.Report{}, wrapRoster(err)
	}
	similar := similarity.RankSimilar(p, roster.All(ctx))
	return scouting.BuildReport(p, seasons, similar, s.currentSeason), nil
}

// Compare returns the players and the narrative for their position mix.
func (s *Service) Compare(ctx context.Context, ids []int64) (Comparison, error) {
	if len(ids) == 0 || len(ids) > MaxCompared {
		return Comparison{}, ErrInvalidComparison
	}
	seen := make(map[int64]struct{}, len(ids))
	players := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return Comparison{}, fmt.Errorf("%w: player %d listed twice", ErrInvalidComparison, id)
		}
		seen[id] = struct{}{}

		p, err := s.player(ctx, id)
		if err != nil {
			return Comparison{}, err
		}
		players = append(players, p)
	}
	return Comparison{Players: players, Narrative: narrative.Select(players)}, nil
}

// Leaderboard returns the top players by peak potential.
func (s *Service) Leaderboard(ctx context.Context, limit int, position model.Position) ([]repository.Entry, error) {
	roster, err := s.store()
	if err != nil {
		return nil, err
	}
	top, err := roster.TopN(ctx, limit, position)
	if err != nil {
		return nil, wrapRoster(err)
	}
	if top == nil {
		top = []repository.Entry{}
	}
	return top, nil
}

// PositionsSummary lists the top prospects of every position.
func (s *Service) PositionsSummary(ctx context.Context) (map[model.Position][]model.Player, error) {
	roster, err := s.store()
	if err != nil {
		return nil, err
	}
	return scouting.PositionsSummary(roster.All(ctx), scouting.TopProspectsPerGroup), nil
}

// Teams lists every club on the roster.
func (s *Service) Teams(ctx context.Context) ([]scouting.TeamListing, error) {
	roster, err := s.store()
	if err != nil {
		return nil, err
	}
	return scouting.Teams(roster.All(ctx)), nil
}

// Team summarizes one club. Club names match case-insensitively.
func (s *Service) Team(ctx context.Context, club string) (scouting.TeamSummary, error) {
	roster, err := s.store()
	if err != nil {
		return scouting.TeamSummary{}, err
	}
	club = strings.TrimSpace(club)
	if club == "" {
		return scouting.TeamSummary{}, fmt.Errorf("%w: empty club", ErrInvalidArgument)
	}

	var members []model.Player
	for _, p := range roster.All(ctx) {
		if strings.EqualFold(p.Club, club) {
			members = append(members, p)
		}
	}
	if len(members) == 0 {
		return scouting.TeamSummary{}, fmt.Errorf("%w: club %q", ErrNotFound, club)
	}
	return scouting.Team(members[0].Club, members), nil
}
