// Package selection caches the players a user picked for comparison.
//
// Cached entries may drift from the roster. Staleness is reported on read
// through Check and never resolved silently.
package selection

import (
	"context"
	"strings"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/metrics"
)

// MaxEntries is the largest comparison a selection can hold.
const MaxEntries = 4

// Stale reasons.
const (
	ReasonMissing = "missing"
	ReasonChanged = "changed"
	ReasonExpired = "expired"
)

// Store persists one selection per owner.
type Store interface {
	// Get returns the owner's selection or ErrNotFound.
	Get(ctx context.Context, owner string) ([]model.SelectionEntry, error)
	// Put replaces the owner's selection.
	Put(ctx context.Context, owner string, entries []model.SelectionEntry) error
	// Delete drops the owner's selection. Deleting a missing one is not an error.
	Delete(ctx context.Context, owner string) error
}

// Lookup resolves a player from the current roster.
type Lookup func(ctx context.Context, id int64) (model.Player, bool)

// Entry snapshots p for caching.
func Entry(p model.Player, now time.Time) model.SelectionEntry {
	return model.SelectionEntry{
		PlayerID:      p.ID,
		Name:          p.Name,
		Position:      p.Position,
		PeakPotential: p.PeakPotential,
		CurrentRating: p.CurrentRating,
		CachedAt:      now.UTC(),
	}
}

// Validate checks an owner and a selection before it is stored.
func Validate(owner string, entries []model.SelectionEntry) error {
	if strings.TrimSpace(owner) == "" {
		return ErrInvalidOwner
	}
	if len(entries) == 0 || len(entries) > MaxEntries {
		return ErrInvalidSize
	}
	return nil
}

// Check flags entries that no longer match the roster. A ttl of zero
// disables expiry.
func Check(ctx context.Context, entries []model.SelectionEntry, lookup Lookup, now time.Time, ttl time.Duration) []model.SelectionEntry {
	out := make([]model.SelectionEntry, len(entries))
	for i, e := range entries {
		e.Stale, e.StaleReason = false, ""
		p, ok := lookup(ctx, e.PlayerID)
		switch {
		case !ok:
			e.Stale, e.StaleReason = true, ReasonMissing
		case p.PeakPotential != e.PeakPotential || p.CurrentRating != e.CurrentRating:
			e.Stale, e.StaleReason = true, ReasonChanged
		case ttl > 0 && now.Sub(e.CachedAt) > ttl:
			e.Stale, e.StaleReason = true, ReasonExpired
		}
		if e.Stale {
			metrics.RecordSelectionStale(e.StaleReason)
		}
		out[i] = e
	}
	return out
}
