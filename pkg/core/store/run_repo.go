package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"electrolyser_tea/pkg/core/pipeline"
)

// RunRepo stores pipeline results.
// Supports Hybrid Vault: DB (Primary) + File System (Fallback/Local)
type RunRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunRepo creates a run repository. If pool is nil, runs are written as JSON files
// under dir (default .cache/tea/runs).
func NewRunRepo(pool *pgxpool.Pool, dir string) (*RunRepo, error) {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "tea", "runs")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create run cache dir: %w", err)
		}
	}
	return &RunRepo{pool: pool, fileDir: dir}, nil
}

// RunEntry is the listing view of a stored run.
type RunEntry struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	NPV       float64   `json:"npv"`
}

// Save persists a run. Incomplete runs are rejected.
func (r *RunRepo) Save(ctx context.Context, res *pipeline.Result) error {
	if res == nil || !res.Complete {
		return fmt.Errorf("refusing to store an incomplete run")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	// 1. Save to DB
	if r.pool != nil {
		query := `
			INSERT INTO tea_runs (run_id, created_at, npv, result)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (run_id)
			DO UPDATE SET
				npv = EXCLUDED.npv,
				result = EXCLUDED.result
		`
		if _, err := r.pool.Exec(ctx, query, res.RunID, res.CreatedAt, res.Summary.NPV, data); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		return nil
	}

	// 2. Save to File
	if err := os.WriteFile(r.runPath(res.RunID), data, 0644); err != nil {
		return fmt.Errorf("failed to save run to file: %w", err)
	}
	return nil
}

// Load retrieves a stored run by id.
func (r *RunRepo) Load(ctx context.Context, runID string) (*pipeline.Result, error) {
	var data []byte
	if r.pool != nil {
		err := r.pool.QueryRow(ctx, `SELECT result FROM tea_runs WHERE run_id = $1`, runID).Scan(&data)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load run: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(r.runPath(runID))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load run: %w", err)
		}
	}

	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &res, nil
}

// List returns the most recent runs first, at most limit entries (all when limit <= 0).
func (r *RunRepo) List(ctx context.Context, limit int) ([]RunEntry, error) {
	if r.pool != nil {
		query := `SELECT run_id, created_at, COALESCE(npv, 0) FROM tea_runs ORDER BY created_at DESC`
		args := []any{}
		if limit > 0 {
			query += ` LIMIT $1`
			args = append(args, limit)
		}
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RunEntry, error) {
			var e RunEntry
			err := row.Scan(&e.RunID, &e.CreatedAt, &e.NPV)
			return e, err
		})
	}

	files, err := os.ReadDir(r.fileDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var entries []RunEntry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		res, err := r.Load(ctx, strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue
		}
		e := RunEntry{RunID: res.RunID, CreatedAt: res.CreatedAt}
		if res.Summary != nil {
			e.NPV = res.Summary.NPV
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Internal File Helpers

func (r *RunRepo) runPath(runID string) string {
	// Sanitize id: run ids are uuids, anything path-like is flattened
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(runID)
	return filepath.Join(r.fileDir, safe+".json")
}
