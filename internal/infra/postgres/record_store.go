package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// RecordStore keeps each collection as one JSONB row in record_collections.
// The schema comes from the bun migrations in ./migrations.
type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) Load(ctx context.Context, collection string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM record_collections WHERE name=$1`, collection).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return raw, nil
}

func (s *RecordStore) Save(ctx context.Context, collection string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO record_collections (name, data, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`, collection, string(data))
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

// Modify locks the collection row with SELECT ... FOR UPDATE for the whole cycle.
func (s *RecordStore) Modify(ctx context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", collection, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO record_collections (name, data) VALUES ($1, NULL) ON CONFLICT (name) DO NOTHING`, collection); err != nil {
		return fmt.Errorf("ensure %s: %w", collection, err)
	}

	var current []byte
	if err := tx.QueryRow(ctx, `SELECT data FROM record_collections WHERE name=$1 FOR UPDATE`, collection).Scan(&current); err != nil {
		return fmt.Errorf("lock %s: %w", collection, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE record_collections SET data=$2::jsonb, updated_at=now() WHERE name=$1`, collection, string(next)); err != nil {
		return fmt.Errorf("update %s: %w", collection, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", collection, err)
	}
	return nil
}

func (s *RecordStore) NextID(ctx context.Context, collection string, floor int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
INSERT INTO record_counters (collection, value) VALUES ($1, $2::bigint + 1)
ON CONFLICT (collection) DO UPDATE SET value = GREATEST(record_counters.value, $2::bigint) + 1
RETURNING value`, collection, floor).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next id %s: %w", collection, err)
	}
	return id, nil
}
