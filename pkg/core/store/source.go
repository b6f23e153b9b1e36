// Package store loads parameter snapshots from SQLite, Postgres or files and persists
// pipeline runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"electrolyser_tea/pkg/core/config"
	"electrolyser_tea/pkg/core/params"
)

// ErrNotFound is returned when a requested run or parameter source does not exist.
var ErrNotFound = errors.New("not found")

// Source produces a parameter snapshot. Every call re-reads the backing store.
type Source interface {
	Load(ctx context.Context) (*params.Store, error)
}

// NewSource returns the source selected by cfg. Postgres sources use the shared pool,
// which must be initialized with InitDB first.
func NewSource(cfg config.SourceConfig) (Source, error) {
	switch strings.ToLower(cfg.Kind) {
	case config.SourceSQLite:
		return NewSQLiteSource(cfg.Path), nil
	case config.SourceFile:
		return NewFileSource(cfg.Path), nil
	case config.SourcePostgres:
		if GetPool() == nil {
			return nil, fmt.Errorf("postgres source: database pool not initialized")
		}
		return NewPGSource(GetPool()), nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}

// fromRows assembles a parameter store from (category, key, value) rows.
func fromRows(rows map[params.Category]map[string]float64) (*params.Store, error) {
	tables := make(map[string]map[string]float64, len(rows))
	for cat, kv := range rows {
		tables[string(cat)] = kv
	}
	return params.New(tables)
}
