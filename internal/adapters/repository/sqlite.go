package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"kudos/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	name  TEXT PRIMARY KEY COLLATE NOCASE,
	total INTEGER NOT NULL DEFAULT 0,
	temp  INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS quotas (
	actor        TEXT PRIMARY KEY COLLATE NOCASE,
	count        INTEGER NOT NULL,
	window_start INTEGER NOT NULL
);
`

// SQLiteStore implements Store on an embedded SQLite database. All queries
// are parameterized; item and actor columns collate case-insensitively so
// identity lives in the schema rather than in callers.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn and ensures the
// schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite has a single writer; one connection sidesteps SQLITE_BUSY
	// under concurrent appliers without losing per-record atomicity.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Apply(ctx context.Context, item string, delta int64) (Score, error) {
	defer s.observe(time.Now())

	var sc Score
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO scores (name, total, temp) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			total = total + excluded.total,
			temp  = temp  + excluded.temp
		RETURNING total, temp`,
		item, delta, delta,
	).Scan(&sc.Total, &sc.Temp)
	if err != nil {
		metrics.RecordStoreError()
		return Score{}, fmt.Errorf("apply delta for %q: %w", item, err)
	}
	return sc, nil
}

func (s *SQLiteStore) Query(ctx context.Context, item string) (Score, error) {
	defer s.observe(time.Now())

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (name, total, temp) VALUES (?, 0, 0) ON CONFLICT(name) DO NOTHING`,
		item,
	); err != nil {
		metrics.RecordStoreError()
		return Score{}, fmt.Errorf("upsert zero record for %q: %w", item, err)
	}

	var sc Score
	if err := s.db.QueryRowContext(ctx,
		`SELECT total, temp FROM scores WHERE name = ?`, item,
	).Scan(&sc.Total, &sc.Temp); err != nil {
		metrics.RecordStoreError()
		return Score{}, fmt.Errorf("query score for %q: %w", item, err)
	}
	return sc, nil
}

func (s *SQLiteStore) ResetEra(ctx context.Context) error {
	defer s.observe(time.Now())

	if _, err := s.db.ExecContext(ctx, `UPDATE scores SET temp = 0`); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("reset era: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	defer s.observe(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total, temp FROM scores ORDER BY total DESC, name ASC LIMIT ?`, n,
	)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.Item, &e.Total, &e.Temp); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0
	}
	metrics.UpdateTrackedItems(n)
	return n
}

func (s *SQLiteStore) ConsumeQuota(ctx context.Context, actor string, now time.Time, window time.Duration, maxOps int) (bool, error) {
	defer s.observe(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError()
		return false, fmt.Errorf("begin quota tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	nowSec := now.Unix()
	windowSec := int64(window / time.Second)

	var count int
	var windowStart int64
	err = tx.QueryRowContext(ctx,
		`SELECT count, window_start FROM quotas WHERE actor = ?`, actor,
	).Scan(&count, &windowStart)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quotas (actor, count, window_start) VALUES (?, 1, ?)`,
			actor, nowSec,
		); err != nil {
			metrics.RecordStoreError()
			return false, fmt.Errorf("create quota record: %w", err)
		}
	case err != nil:
		metrics.RecordStoreError()
		return false, fmt.Errorf("read quota record: %w", err)
	case nowSec-windowStart >= windowSec:
		// New window; this evaluation is its first operation.
		if _, err := tx.ExecContext(ctx,
			`UPDATE quotas SET count = 1, window_start = ? WHERE actor = ?`,
			nowSec, actor,
		); err != nil {
			metrics.RecordStoreError()
			return false, fmt.Errorf("reset quota window: %w", err)
		}
	case count < maxOps:
		if _, err := tx.ExecContext(ctx,
			`UPDATE quotas SET count = count + 1 WHERE actor = ?`, actor,
		); err != nil {
			metrics.RecordStoreError()
			return false, fmt.Errorf("consume quota slot: %w", err)
		}
	default:
		// Denied; the record stays untouched.
		return false, tx.Commit()
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError()
		return false, fmt.Errorf("commit quota tx: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) observe(start time.Time) {
	metrics.RecordStoreLatency(float64(time.Since(start).Milliseconds()))
}
