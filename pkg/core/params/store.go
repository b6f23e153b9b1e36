// Package params holds the immutable parameter snapshot that feeds the TEA model.
//
// Parameters arrive as five flat categories of (key, value) pairs. Keys are matched
// case-insensitively and ignoring whitespace and underscores, so "Base Labour Wage",
// "base_labour_wage" and "BaseLabourWage" all address the same entry.
package params

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Category names one of the five parameter tables.
type Category string

const (
	Pretreat     Category = "pretreat_equipment_cost"
	Electrolyser Category = "electrolyser"
	OpexFactors  Category = "opex_factors"
	CapexFactors Category = "capex_factors"
	CashFlow     Category = "cash_flow"
)

// Categories lists every known category in load order.
var Categories = []Category{Pretreat, Electrolyser, OpexFactors, CapexFactors, CashFlow}

// ErrDuplicateKey is returned when two raw keys normalize to the same key within a category.
var ErrDuplicateKey = errors.New("duplicate parameter key")

// ParseCategory resolves a category name using the same normalization as keys.
func ParseCategory(name string) (Category, bool) {
	n := NormalizeKey(name)
	for _, c := range Categories {
		if NormalizeKey(string(c)) == n {
			return c, true
		}
	}
	return "", false
}

// NormalizeKey lowercases a key and drops whitespace and underscores.
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsSpace(r) || r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Store is an immutable parameter snapshot. The zero value is an empty store.
type Store struct {
	values map[Category]map[string]float64
	// raw keeps the first spelling seen for each normalized key, for Snapshot.
	raw map[Category]map[string]string
	// ignored records categories that were supplied but are not part of the model.
	ignored []string
}

// New builds a Store from a category -> key -> value mapping. Unknown categories are
// dropped and reported by Ignored.
func New(in map[string]map[string]float64) (*Store, error) {
	s := &Store{
		values: make(map[Category]map[string]float64, len(Categories)),
		raw:    make(map[Category]map[string]string, len(Categories)),
	}

	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cat, ok := ParseCategory(name)
		if !ok {
			s.ignored = append(s.ignored, name)
			continue
		}
		if s.values[cat] == nil {
			s.values[cat] = make(map[string]float64, len(in[name]))
			s.raw[cat] = make(map[string]string, len(in[name]))
		}
		for key, value := range in[name] {
			n := NormalizeKey(key)
			if prev, dup := s.raw[cat][n]; dup {
				return nil, fmt.Errorf("%w: %q and %q in %s", ErrDuplicateKey, prev, key, cat)
			}
			s.values[cat][n] = value
			s.raw[cat][n] = key
		}
	}
	return s, nil
}

// Lookup returns the value for key in category and whether it was present.
func (s *Store) Lookup(cat Category, key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.values[cat][NormalizeKey(key)]
	return v, ok
}

// Get returns the value for key, or 0 when it is missing. A missing key is recorded in
// diag when diag is non-nil.
func (s *Store) Get(cat Category, key string, diag *Diagnostics) float64 {
	v, ok := s.Lookup(cat, key)
	if !ok {
		diag.Missing(cat, key)
		return 0
	}
	return v
}

// With returns a copy of the store with key set in category. The receiver is unchanged.
func (s *Store) With(cat Category, key string, value float64) *Store {
	out := &Store{
		values: make(map[Category]map[string]float64, len(Categories)),
		raw:    make(map[Category]map[string]string, len(Categories)),
	}
	if s != nil {
		for c, kv := range s.values {
			out.values[c] = make(map[string]float64, len(kv)+1)
			out.raw[c] = make(map[string]string, len(kv)+1)
			for k, v := range kv {
				out.values[c][k] = v
				out.raw[c][k] = s.raw[c][k]
			}
		}
		out.ignored = append(out.ignored, s.ignored...)
	}
	if out.values[cat] == nil {
		out.values[cat] = make(map[string]float64, 1)
		out.raw[cat] = make(map[string]string, 1)
	}
	n := NormalizeKey(key)
	out.values[cat][n] = value
	if _, ok := out.raw[cat][n]; !ok {
		out.raw[cat][n] = key
	}
	return out
}

// Snapshot returns a deep copy of the parameters keyed by their original spelling.
func (s *Store) Snapshot() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(Categories))
	if s == nil {
		return out
	}
	for c, kv := range s.values {
		m := make(map[string]float64, len(kv))
		for k, v := range kv {
			m[s.raw[c][k]] = v
		}
		out[string(c)] = m
	}
	return out
}

// Len returns the number of parameters in category.
func (s *Store) Len(cat Category) int {
	if s == nil {
		return 0
	}
	return len(s.values[cat])
}

// Ignored lists input categories that did not match any known category.
func (s *Store) Ignored() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.ignored...)
}
