// Package store keeps a local SQLite snapshot of the last fetched event
// collections, so listings and counters work offline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/telecontrol-mt/calendario/internal/event"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	kind  TEXT NOT NULL,
	seq   INTEGER NOT NULL,
	id    TEXT NOT NULL DEFAULT '',
	day   TEXT NOT NULL DEFAULT '',
	body  TEXT NOT NULL,
	PRIMARY KEY (kind, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_day ON events(kind, day);
CREATE TABLE IF NOT EXISTS fetches (
	kind       TEXT PRIMARY KEY,
	fetched_at TEXT NOT NULL
);
`

// ErrNoSnapshot is returned when a collection was never saved.
var ErrNoSnapshot = errors.New("no local snapshot; run without --offline first")

// Store is a snapshot database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at path. ":memory:" keeps
// it in memory.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil { //nolint:mnd // directory mode
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the stored collection of kind with events.
func (s *Store) Save(ctx context.Context, kind event.Kind, events []*event.Event, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("clearing %s snapshot: %w", kind, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events (kind, seq, id, day, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding event %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, string(kind), i, e.ID.String(), e.Day(), string(body)); err != nil {
			return fmt.Errorf("storing event %s: %w", e.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fetches (kind, fetched_at) VALUES (?, ?)
		 ON CONFLICT(kind) DO UPDATE SET fetched_at = excluded.fetched_at`,
		string(kind), fetchedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamping %s snapshot: %w", kind, err)
	}
	return tx.Commit()
}

// Load returns the stored collection of kind in its fetch order, and the
// time it was fetched.
func (s *Store) Load(ctx context.Context, kind event.Kind) ([]*event.Event, time.Time, error) {
	var stamp string
	err := s.db.QueryRowContext(ctx, `SELECT fetched_at FROM fetches WHERE kind = ?`, string(kind)).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading %s snapshot time: %w", kind, err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing %s snapshot time: %w", kind, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT body FROM events WHERE kind = ? ORDER BY seq`, string(kind))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading %s snapshot: %w", kind, err)
	}
	defer rows.Close()

	var out []*event.Event
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, time.Time{}, fmt.Errorf("scanning %s snapshot: %w", kind, err)
		}
		var e event.Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, time.Time{}, fmt.Errorf("decoding %s snapshot: %w", kind, err)
		}
		e.Kind = kind
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("reading %s snapshot: %w", kind, err)
	}
	return out, fetchedAt, nil
}
