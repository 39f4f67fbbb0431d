package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/scout/internal/adapters/selection"
	"github.com/okian/scout/internal/adapters/storage"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
)

// GetSelection returns an owner's cached comparison selection with stale
// entries flagged against the current roster.
func (s *Service) GetSelection(ctx context.Context, owner string) ([]model.SelectionEntry, error) {
	roster, err := s.store()
	if err != nil {
		return nil, err
	}
	entries, err := s.selections.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, selection.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	lookup := func(ctx context.Context, id int64) (model.Player, bool) {
		p, err := roster.Get(ctx, id)
		return p, err == nil
	}
	return selection.Check(ctx, entries, lookup, s.now(), s.selectionTTL), nil
}

// PutSelection caches the current state of the given players for owner.
func (s *Service) PutSelection(ctx context.Context, owner string, ids []int64) ([]model.SelectionEntry, error) {
	if len(ids) == 0 || len(ids) > selection.MaxEntries {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, selection.ErrInvalidSize)
	}
	now := s.now()
	entries := make([]model.SelectionEntry, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, err := s.player(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, selection.Entry(p, now))
	}
	if err := selection.Validate(owner, entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if err := s.selections.Put(ctx, owner, entries); err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	s.logger.Debug(ctx, "selection cached", logger.String("owner", owner), logger.Int("players", len(entries)))
	return entries, nil
}

// DeleteSelection drops an owner's selection.
func (s *Service) DeleteSelection(ctx context.Context, owner string) error {
	if err := selection.Validate(owner, []model.SelectionEntry{{}}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return s.selections.Delete(ctx, owner)
}

// Watch adds a known player to the watchlist. It reports false when the
// player was already watched.
func (s *Service) Watch(ctx context.Context, id int64) (bool, error) {
	if s.archive == nil {
		return false, ErrNoArchive
	}
	if _, err := s.player(ctx, id); err != nil {
		return false, err
	}
	return s.archive.Watch(ctx, id)
}

// Unwatch removes a player from the watchlist.
func (s *Service) Unwatch(ctx context.Context, id int64) error {
	if s.archive == nil {
		return ErrNoArchive
	}
	if err := s.archive.Unwatch(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return err
	}
	return nil
}

// Watchlist returns every watched player, oldest first, with the player's
// latest season when it is on the roster.
func (s *Service) Watchlist(ctx context.Context) ([]WatchedPlayer, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	roster, err := s.store()
	if err != nil {
		return nil, err
	}
	entries, err := s.archive.Watchlist(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WatchedPlayer, 0, len(entries))
	for _, e := range entries {
		w := WatchedPlayer{WatchEntry: e}
		if p, err := roster.Get(ctx, e.PlayerID); err == nil {
			w.Player = &p
		}
		out = append(out, w)
	}
	return out, nil
}
