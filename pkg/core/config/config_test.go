package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TEA_ADDR", "TEA_SOURCE", "TEA_SOURCE_PATH", "DATABASE_URL", "TEA_CACHE_DIR", "TEA_SWEEP_WORKERS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Source.Kind != SourceSQLite || cfg.Sweep.Steps != 3 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tea.yaml")
	data := []byte(`
server:
  addr: ":9090"
source:
  kind: file
  path: params.yaml
sweep:
  steps: 2
  step_fraction: 0.05
tax:
  allow_loss_credit: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	clearEnv(t)
	t.Setenv("TEA_SWEEP_WORKERS", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr: got %q", cfg.Server.Addr)
	}
	if cfg.Source.Kind != SourceFile || cfg.Source.Path != "params.yaml" {
		t.Errorf("source: got %+v", cfg.Source)
	}
	if cfg.Sweep.Steps != 2 || cfg.Sweep.StepFraction != 0.05 || cfg.Sweep.Workers != 4 {
		t.Errorf("sweep: got %+v", cfg.Sweep)
	}
	if !cfg.Tax.AllowLossCredit {
		t.Error("expected allow_loss_credit")
	}
	if cfg.Cache.Dir != ".cache/tea/runs" {
		t.Errorf("unset fields should keep defaults, got cache dir %q", cfg.Cache.Dir)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected a parse error")
	}

	t.Setenv("TEA_SWEEP_WORKERS", "many")
	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("expected an error for a non-numeric worker count")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mut     func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"postgres without url", func(c *Config) { c.Source.Kind = SourcePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.Source.Kind = SourcePostgres
			c.Source.DatabaseURL = "postgres://localhost/tea"
		}, false},
		{"file without path", func(c *Config) { c.Source.Kind = SourceFile; c.Source.Path = "" }, true},
		{"unknown kind", func(c *Config) { c.Source.Kind = "excel" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
