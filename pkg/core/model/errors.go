package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Stage names used in errors and pipeline status.
const (
	StageElectrolyser = "electrolyser"
	StageCapex        = "capex"
	StageOpex         = "opex"
	StageCashFlow     = "cash_flow"
	StageDCF          = "dcf"
)

// ErrStageOrder is returned when a stage is called without a required upstream result.
var ErrStageOrder = errors.New("stage order violation")

// NonFiniteError reports a NaN or infinite value produced by a stage. The usual cause is
// a zero denominator such as time, capacity, molar weight or current density.
type NonFiniteError struct {
	Stage string
	Field string
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%s: non-finite %s (%v)", e.Stage, e.Field, e.Value)
}

// IsNonFinite reports whether err wraps a *NonFiniteError.
func IsNonFinite(err error) bool {
	var nf *NonFiniteError
	return errors.As(err, &nf)
}

func missingUpstream(stage, upstream string) error {
	return fmt.Errorf("%w: %s requires %s result", ErrStageOrder, stage, upstream)
}

// field names one output value of a stage.
type field struct {
	name string
	v    *float64
}

// finalize rejects non-finite outputs and rounds the rest to cents in place.
func finalize(stage string, fields []field) error {
	for _, f := range fields {
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return &NonFiniteError{Stage: stage, Field: f.name, Value: *f.v}
		}
	}
	for _, f := range fields {
		*f.v = Round2(*f.v)
	}
	return nil
}

// Round2 rounds v half away from zero to two decimal places. v must be finite.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
