package storage

import (
	"context"
	"fmt"
	"time"
)

// WatchEntry is a watched player.
type WatchEntry struct {
	PlayerID int64     `json:"player_id"`
	AddedAt  time.Time `json:"added_at"`
}

// Watch adds a player to the watchlist. Returns false if it was already there.
func (db *DB) Watch(ctx context.Context, playerID int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO watchlist (player_id, added_at) VALUES (?, ?) ON CONFLICT(player_id) DO NOTHING`,
		playerID, time.Now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("watch player %d: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("watch player %d: %w", playerID, err)
	}
	return n > 0, nil
}

// Unwatch removes a player from the watchlist.
func (db *DB) Unwatch(ctx context.Context, playerID int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM watchlist WHERE player_id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("unwatch player %d: %w", playerID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Watchlist returns watched players, oldest first.
func (db *DB) Watchlist(ctx context.Context) ([]WatchEntry, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT player_id, added_at FROM watchlist ORDER BY added_at, player_id`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	out := []WatchEntry{}
	for rows.Next() {
		var (
			e       WatchEntry
			addedAt int64
		)
		if err := rows.Scan(&e.PlayerID, &addedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		e.AddedAt = time.UnixMilli(addedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
