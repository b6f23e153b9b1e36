package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"electrolyser_tea/pkg/core/params/paramstest"
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

// importReference writes the reference parameters to a YAML file and imports them into a
// fresh SQLite database.
func importReference(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "params.yaml")
	if err := store.WriteParamsYAML(yamlPath, paramstest.Store()); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "data", "database.db")

	out, err := execute(t, "import", "--from", yamlPath, "--to", dbPath)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported") {
		t.Errorf("unexpected import output %q", out)
	}
	return dbPath
}

func TestRunCommand_JSON(t *testing.T) {
	db := importReference(t)

	out, err := execute(t, "--source", "sqlite", "--path", db, "run", "--json", "--discount-rate", "10")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("run output is not JSON: %v", err)
	}
	if !res.Complete || res.Summary == nil || res.Summary.NPV != 2.42 {
		t.Errorf("unexpected result %+v", res.Summary)
	}
}

func TestSweepCommand_Markdown(t *testing.T) {
	db := importReference(t)

	out, err := execute(t, "--path", db, "sweep", "--param", "tax_rate")
	if err != nil {
		t.Fatalf("sweep: %v\n%s", err, out)
	}
	for _, want := range []string{"## Sensitivity: tax_rate", "17.50%", "25.00%", "32.50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("sweep output missing %q", want)
		}
	}
}

func TestReportCommand_HTMLFile(t *testing.T) {
	db := importReference(t)
	out := filepath.Join(t.TempDir(), "reports", "tea.html")

	if _, err := execute(t, "--path", db, "report", "--html", "--out", out); err != nil {
		t.Fatalf("report: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "<table>") {
		t.Error("expected an HTML table in the report")
	}
}

func TestCommands_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown sweep param", []string{"sweep", "--param", "wacc"}},
		{"missing database", []string{"--path", filepath.Join(t.TempDir(), "none.db"), "run"}},
		{"unsupported destination", []string{"import", "--from", "x.yaml", "--to", "out.csv"}},
		{"unknown source kind", []string{"--source", "excel", "run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
