// Package sqlite stores collections as JSON documents in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"ecoclick-api/internal/infra/lock"
)

const schema = `
CREATE TABLE IF NOT EXISTS record_collections (
    name       TEXT PRIMARY KEY,
    data       TEXT,
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS record_counters (
    collection TEXT PRIMARY KEY,
    value      INTEGER NOT NULL
);
`

// Store implements app.RecordStore on SQLite. One connection is used so writers never
// see SQLITE_BUSY from each other; Modify is additionally serialized per collection.
type Store struct {
	db    *sql.DB
	locks lock.Keyed
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite store: path not configured")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, collection string) ([]byte, error) {
	var data sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT data FROM record_collections WHERE name = ?`, collection).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !data.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return []byte(data.String), nil
}

func (s *Store) Save(ctx context.Context, collection string, data []byte) error {
	unlock := s.locks.Lock(collection)
	defer unlock()
	return s.upsert(ctx, s.db, collection, data)
}

func (s *Store) Modify(ctx context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	unlock := s.locks.Lock(collection)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", collection, err)
	}
	defer tx.Rollback()

	var current []byte
	var data sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT data FROM record_collections WHERE name = ?`, collection).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("load %s: %w", collection, err)
	case data.Valid:
		current = []byte(data.String)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if err := s.upsert(ctx, tx, collection, next); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", collection, err)
	}
	return nil
}

func (s *Store) NextID(ctx context.Context, collection string, floor int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO record_counters (collection, value) VALUES (?, ? + 1)
ON CONFLICT (collection) DO UPDATE SET value = MAX(record_counters.value, ?) + 1
RETURNING value`, collection, floor, floor).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next id %s: %w", collection, err)
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, db execer, collection string, data []byte) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO record_collections (name, data) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET data = excluded.data,
    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`, collection, string(data))
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}
