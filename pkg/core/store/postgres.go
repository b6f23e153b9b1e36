package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"electrolyser_tea/pkg/core/params"
)

// schema holds the parameter table and the run table; runs are stored as JSONB.
const schema = `
	CREATE TABLE IF NOT EXISTS tea_parameters (
		category TEXT NOT NULL,
		key TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (category, key)
	);
	CREATE TABLE IF NOT EXISTS tea_runs (
		run_id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		npv DOUBLE PRECISION,
		result JSONB NOT NULL
	);
`

// EnsureSchema creates the parameter and run tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// PGSource reads parameters from the tea_parameters table.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource returns a source backed by pool.
func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

// Load reads every row of tea_parameters. Rows in unknown categories are reported by
// the resulting store's Ignored list.
func (s *PGSource) Load(ctx context.Context) (*params.Store, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := s.pool.Query(ctx, `SELECT category, key, value FROM tea_parameters ORDER BY category, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]map[string]float64)
	for rows.Next() {
		var cat, key string
		var value float64
		if err := rows.Scan(&cat, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		if tables[cat] == nil {
			tables[cat] = make(map[string]float64)
		}
		tables[cat][key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("tea_parameters is empty: %w", ErrNotFound)
	}
	return params.New(tables)
}

// ImportPostgres replaces the contents of tea_parameters with s.
func ImportPostgres(ctx context.Context, pool *pgxpool.Pool, s *params.Store) error {
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tea_parameters`); err != nil {
			return fmt.Errorf("failed to clear parameters: %w", err)
		}
		batch := &pgx.Batch{}
		for cat, kv := range s.Snapshot() {
			for key, value := range kv {
				batch.Queue(`INSERT INTO tea_parameters (category, key, value) VALUES ($1, $2, $3)`, cat, key, value)
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert parameters: %w", err)
		}
		return nil
	})
}
