package params

import (
	"errors"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Base Labour Wage":   "baselabourwage",
		"base_labour_wage":   "baselabourwage",
		"  BaseLabourWage  ": "baselabourwage",
		"e_cell":             "ecell",
		"":                   "",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStore_LookupIsSpellingInsensitive(t *testing.T) {
	s, err := New(map[string]map[string]float64{
		"opex_factors": {"Base Labour Wage": 50000},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := s.Lookup(OpexFactors, "base_labour_wage")
	if !ok || v != 50000 {
		t.Errorf("expected 50000, got %v (present=%v)", v, ok)
	}
}

func TestStore_DuplicateAfterNormalization(t *testing.T) {
	_, err := New(map[string]map[string]float64{
		"cash_flow": {"Tax Rate": 30, "tax_rate": 25},
	})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestStore_UnknownCategoryIgnored(t *testing.T) {
	s, err := New(map[string]map[string]float64{
		"cash_flow": {"tax_rate": 30},
		"weather":   {"rain": 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Ignored(); len(got) != 1 || got[0] != "weather" {
		t.Errorf("expected [weather] ignored, got %v", got)
	}
}

func TestStore_GetMissingRecordsWarning(t *testing.T) {
	s, _ := New(map[string]map[string]float64{"opex_factors": {"supervision": 20}})
	diag := NewDiagnostics()

	if v := s.Get(OpexFactors, "insurance", diag); v != 0 {
		t.Errorf("expected default 0, got %v", v)
	}
	// second read of the same key is not recorded twice
	s.Get(OpexFactors, "Insurance", diag)

	if diag.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", diag.Len())
	}
	w := diag.Warnings()[0]
	if w.Kind != WarnMissing || w.Category != OpexFactors || w.Key != "insurance" {
		t.Errorf("unexpected warning %+v", w)
	}
	if !diag.HasMissing(OpexFactors, "insurance") {
		t.Error("HasMissing should report insurance")
	}
}

func TestStore_GetNilDiagnostics(t *testing.T) {
	var s *Store
	if v := s.Get(CashFlow, "tax_rate", nil); v != 0 {
		t.Errorf("expected 0 from nil store, got %v", v)
	}
}

func TestStore_WithLeavesReceiverUnchanged(t *testing.T) {
	base, _ := New(map[string]map[string]float64{"cash_flow": {"Discount Rate": 10}})
	next := base.With(CashFlow, "discount_rate", 12)

	if v, _ := base.Lookup(CashFlow, "discount_rate"); v != 10 {
		t.Errorf("base mutated: got %v", v)
	}
	if v, _ := next.Lookup(CashFlow, "discount rate"); v != 12 {
		t.Errorf("override not applied: got %v", v)
	}
	snap := next.Snapshot()
	if snap["cash_flow"]["Discount Rate"] != 12 {
		t.Errorf("snapshot should keep original spelling, got %v", snap["cash_flow"])
	}
}
