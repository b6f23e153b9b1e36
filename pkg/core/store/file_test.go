package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"electrolyser_tea/pkg/core/config"
	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/params/paramstest"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource_Formats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"yaml", "params.yaml", "cash_flow:\n  Discount Rate: 8\n  tax_rate: 30\n"},
		{"hjson", "params.hjson", "{\n  # rates in percent\n  cash_flow: {\n    \"Discount Rate\": 8\n    tax_rate: 30\n  }\n}\n"},
		{"json", "params.json", `{"cash_flow": {"Discount Rate": 8, "tax_rate": 30}}`},
		{"json with trailing comma", "params.json", `{"cash_flow": {"Discount Rate": 8, "tax_rate": 30,},}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewFileSource(writeFile(t, tt.file, tt.body)).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if v, _ := s.Lookup(params.CashFlow, "discount_rate"); v != 8 {
				t.Errorf("discount rate: got %v", v)
			}
			if v, _ := s.Lookup(params.CashFlow, "Tax Rate"); v != 30 {
				t.Errorf("tax rate: got %v", v)
			}
		})
	}
}

func TestFileSource_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml")).Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := NewFileSource(writeFile(t, "params.xlsx", "x")).Load(ctx); err == nil {
		t.Error("expected an unsupported format error")
	}
	dup := "electrolyser:\n  Capacity: 1\n  capacity: 2\n"
	if _, err := NewFileSource(writeFile(t, "dup.yaml", dup)).Load(ctx); !errors.Is(err, params.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestWriteParamsYAML_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := WriteParamsYAML(path, paramstest.Store()); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(paramstest.Tables(), s.Snapshot()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSource(t *testing.T) {
	if _, ok := mustSource(t, config.SourceConfig{Kind: "sqlite", Path: "x.db"}).(*SQLiteSource); !ok {
		t.Error("expected a SQLite source")
	}
	if _, ok := mustSource(t, config.SourceConfig{Kind: "file", Path: "p.yaml"}).(*FileSource); !ok {
		t.Error("expected a file source")
	}
	if _, err := NewSource(config.SourceConfig{Kind: "excel"}); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func mustSource(t *testing.T, cfg config.SourceConfig) Source {
	t.Helper()
	s, err := NewSource(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
