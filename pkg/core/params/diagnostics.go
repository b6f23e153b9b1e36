package params

import "fmt"

// WarningKind classifies a degraded-input warning.
type WarningKind string

const (
	// WarnMissing marks a key that was absent and replaced by the default 0.
	WarnMissing WarningKind = "MISSING_PARAMETER"
	// WarnIgnoredCategory marks an input category that is not part of the model.
	WarnIgnoredCategory WarningKind = "IGNORED_CATEGORY"
)

// Warning records one degraded-default substitution.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Category Category    `json:"category"`
	Key      string      `json:"key"`
	Default  float64     `json:"default"`
}

func (w Warning) String() string {
	if w.Kind == WarnIgnoredCategory {
		return fmt.Sprintf("%s: %q", w.Kind, w.Category)
	}
	return fmt.Sprintf("%s: %s.%s (using %g)", w.Kind, w.Category, w.Key, w.Default)
}

// Diagnostics collects warnings produced while binding parameters. A nil *Diagnostics
// discards everything. Not safe for concurrent use; each pipeline run owns one.
type Diagnostics struct {
	warnings []Warning
	seen     map[string]struct{}
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{seen: make(map[string]struct{})}
}

// Missing records that key was absent from cat. Repeated reads of the same key by
// different stages are recorded once.
func (d *Diagnostics) Missing(cat Category, key string) {
	if d == nil {
		return
	}
	id := string(cat) + "/" + NormalizeKey(key)
	if _, dup := d.seen[id]; dup {
		return
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	d.seen[id] = struct{}{}
	d.warnings = append(d.warnings, Warning{Kind: WarnMissing, Category: cat, Key: key})
}

// IgnoredCategory records an input category that the model does not read.
func (d *Diagnostics) IgnoredCategory(name string) {
	if d == nil {
		return
	}
	d.warnings = append(d.warnings, Warning{Kind: WarnIgnoredCategory, Category: Category(name)})
}

// Warnings returns a copy of the recorded warnings in the order they occurred.
func (d *Diagnostics) Warnings() []Warning {
	if d == nil {
		return nil
	}
	return append([]Warning(nil), d.warnings...)
}

// HasMissing reports whether key in cat was defaulted.
func (d *Diagnostics) HasMissing(cat Category, key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.seen[string(cat)+"/"+NormalizeKey(key)]
	return ok
}

// Len returns the number of recorded warnings.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.warnings)
}
