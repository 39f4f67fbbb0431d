package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/metrics"
)

// RawRecord is an upstream record as it was received.
type RawRecord struct {
	ID          int64
	Season      string
	Fingerprint string
	Payload     normalize.Raw
	Source      string
	UpdatedAt   time.Time
}

// SaveRaw stores rec, replacing any earlier version of the same player-season.
func (db *DB) SaveRaw(ctx context.Context, rec RawRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		metrics.RecordArchiveWrite("error")
		return fmt.Errorf("encode payload for %d/%s: %w", rec.ID, rec.Season, err)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO raw_players (id, season, fingerprint, payload, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, season) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			payload = excluded.payload,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Season, rec.Fingerprint, string(payload), rec.Source, rec.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		metrics.RecordArchiveWrite("error")
		return fmt.Errorf("save raw player %d/%s: %w", rec.ID, rec.Season, err)
	}
	metrics.RecordArchiveWrite("ok")
	return nil
}

// GetRaw returns one archived record.
func (db *DB) GetRaw(ctx context.Context, id int64, season string) (RawRecord, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, season, fingerprint, payload, source, updated_at
		FROM raw_players WHERE id = ? AND season = ?`, id, season)
	rec, err := scanRaw(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RawRecord{}, ErrNotFound
	}
	return rec, err
}

// EachRaw calls fn for every archived record, oldest update first. Iteration
// stops at the first error fn returns.
func (db *DB) EachRaw(ctx context.Context, fn func(RawRecord) error) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, season, fingerprint, payload, source, updated_at
		FROM raw_players ORDER BY updated_at, id, season`)
	if err != nil {
		return fmt.Errorf("list raw players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRaw(rows)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountRaw returns the number of archived records.
func (db *DB) CountRaw(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count raw players: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRaw(s scanner) (RawRecord, error) {
	var (
		rec       RawRecord
		payload   string
		updatedAt int64
	)
	if err := s.Scan(&rec.ID, &rec.Season, &rec.Fingerprint, &payload, &rec.Source, &updatedAt); err != nil {
		return RawRecord{}, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	if err := dec.Decode(&rec.Payload); err != nil {
		return RawRecord{}, fmt.Errorf("decode payload for %d/%s: %w", rec.ID, rec.Season, err)
	}
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return rec, nil
}
