package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"electrolyser_tea/pkg/core/params"
)

// SQLiteSource reads the five parameter tables of a workbook-derived SQLite database.
// Each table has (Category TEXT, Value REAL) columns; pretreat_equipment_cost may
// instead use (Equipment TEXT, "Base year" REAL).
type SQLiteSource struct {
	path string
}

// NewSQLiteSource returns a source for the database at path.
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

type paramRow struct {
	Name   string          `db:"name"`
	Amount sql.NullFloat64 `db:"amount"`
}

// column layouts tried in order for each table
var sqliteLayouts = [][2]string{
	{"Category", "Value"},
	{"Equipment", `"Base year"`},
}

// Load reads every known category. Missing tables yield empty categories and NULL
// values are skipped, so both surface later as missing-parameter warnings.
func (s *SQLiteSource) Load(ctx context.Context) (*params.Store, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("sqlite database %s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("sqlite database %s: %w", s.path, err)
	}

	db, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	var tables []string
	if err := db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table'`); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}

	out := make(map[params.Category]map[string]float64, len(params.Categories))
	for _, cat := range params.Categories {
		if !present[string(cat)] {
			continue
		}
		rows, err := selectParams(ctx, db, string(cat))
		if err != nil {
			return nil, err
		}
		kv := make(map[string]float64, len(rows))
		for _, r := range rows {
			if !r.Amount.Valid || strings.TrimSpace(r.Name) == "" {
				continue
			}
			kv[r.Name] = r.Amount.Float64
		}
		out[cat] = kv
	}
	return fromRows(out)
}

func selectParams(ctx context.Context, db *sqlx.DB, table string) ([]paramRow, error) {
	var lastErr error
	for _, layout := range sqliteLayouts {
		var rows []paramRow
		query := fmt.Sprintf(`SELECT %s AS name, %s AS amount FROM %s`, layout[0], layout[1], table)
		err := db.SelectContext(ctx, &rows, query)
		if err == nil {
			return rows, nil
		}
		if !strings.Contains(err.Error(), "no such column") {
			return nil, fmt.Errorf("select %s: %w", table, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("select %s: %w", table, lastErr)
}

// ImportSQLite writes s into the database at path, replacing the contents of the five
// parameter tables. The database and its directory are created if needed.
func ImportSQLite(ctx context.Context, path string, s *params.Store) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	snapshot := s.Snapshot()
	for _, cat := range params.Categories {
		table := string(cat)
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		schema := fmt.Sprintf(`CREATE TABLE %s (Category TEXT, Value REAL)`, table)
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}

		stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(`INSERT INTO %s (Category, Value) VALUES (?, ?)`, table))
		if err != nil {
			return err
		}
		for key, value := range snapshot[table] {
			if _, err := stmt.ExecContext(ctx, key, value); err != nil {
				stmt.Close()
				return fmt.Errorf("insert %s.%s: %w", table, key, err)
			}
		}
		stmt.Close()
	}

	return tx.Commit()
}
