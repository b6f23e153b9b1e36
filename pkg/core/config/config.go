// Package config loads the service configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Source kinds.
const (
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// DefaultPath is where the binaries look for the config file.
const DefaultPath = "config/tea.yaml"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Source SourceConfig `yaml:"source"`
	Cache  CacheConfig  `yaml:"cache"`
	Sweep  SweepConfig  `yaml:"sweep"`
	Tax    TaxConfig    `yaml:"tax"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SourceConfig selects where parameters are loaded from.
type SourceConfig struct {
	Kind        string `yaml:"kind"` // sqlite | postgres | file
	Path        string `yaml:"path"` // sqlite database or parameter file
	DatabaseURL string `yaml:"database_url"`
}

type CacheConfig struct {
	Dir string `yaml:"dir"` // run results when no database is configured
}

type SweepConfig struct {
	Workers      int     `yaml:"workers"`
	Steps        int     `yaml:"steps"`
	StepFraction float64 `yaml:"step_fraction"`
}

type TaxConfig struct {
	AllowLossCredit bool `yaml:"allow_loss_credit"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Source: SourceConfig{Kind: SourceSQLite, Path: "data/database.db"},
		Cache:  CacheConfig{Dir: ".cache/tea/runs"},
		Sweep:  SweepConfig{Workers: runtime.GOMAXPROCS(0), Steps: 3, StepFraction: 0.1},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"TEA_ADDR":        &c.Server.Addr,
		"TEA_SOURCE":      &c.Source.Kind,
		"TEA_SOURCE_PATH": &c.Source.Path,
		"DATABASE_URL":    &c.Source.DatabaseURL,
		"TEA_CACHE_DIR":   &c.Cache.Dir,
		"LOG_LEVEL":       &c.Log.Level,
	}
	for env, dst := range str {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("TEA_SWEEP_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEA_SWEEP_WORKERS: %w", err)
		}
		c.Sweep.Workers = n
	}
	return nil
}

// Validate checks the fields that cannot be defaulted.
func (c Config) Validate() error {
	switch strings.ToLower(c.Source.Kind) {
	case SourceSQLite, SourceFile:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for %s sources", c.Source.Kind)
		}
	case SourcePostgres:
		if c.Source.DatabaseURL == "" {
			return fmt.Errorf("source.database_url (or DATABASE_URL) is required for postgres sources")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Sweep.Steps < 0 {
		return fmt.Errorf("sweep.steps must not be negative")
	}
	return nil
}
