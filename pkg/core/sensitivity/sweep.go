// Package sensitivity re-runs the DCF statement across a symmetric grid around one
// base input and collects the cumulative NPV series of every grid point.
package sensitivity

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"electrolyser_tea/pkg/core/model"
	"electrolyser_tea/pkg/core/valuation"
)

// Parameter names the input a sweep perturbs.
type Parameter string

const (
	DiscountRate Parameter = "discount_rate"
	TaxRate      Parameter = "tax_rate"
	SellingPrice Parameter = "selling_price"
)

// Grid defaults: 7 points, ±30% in 10% steps.
const (
	DefaultSteps        = 3
	DefaultStepFraction = 0.1
)

var ErrUnknownParameter = errors.New("unknown sweep parameter")

// ParseParameter accepts the parameter names used on the CLI and in API requests.
func ParseParameter(s string) (Parameter, error) {
	switch p := Parameter(s); p {
	case DiscountRate, TaxRate, SellingPrice:
		return p, nil
	case "":
		return DiscountRate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParameter, s)
}

// Label formats v for display: rates as percentages, prices as plain amounts.
func (p Parameter) Label(v float64) string {
	if p == SellingPrice {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Grid returns base + base·i·fraction for i in [-steps, steps], in ascending i.
func Grid(base float64, steps int, fraction float64) []float64 {
	if steps < 0 {
		steps = 0
	}
	out := make([]float64, 0, 2*steps+1)
	for i := -steps; i <= steps; i++ {
		out = append(out, base+base*float64(i)*fraction)
	}
	return out
}

// Baseline holds the upstream stage results and base DCF inputs a sweep perturbs.
type Baseline struct {
	Elec     *model.ElectrolyserResult
	Capex    *model.CapexResult
	Opex     *model.OpexResult
	CashFlow *model.CashFlowResult

	// CashFlowInputs is needed to re-run the cash-flow stage for selling price sweeps.
	CashFlowInputs model.CashFlowInputs

	DiscountRate       float64
	TaxRate            float64
	SellingPrice       float64
	AllowTaxLossCredit bool
}

func (b Baseline) value(p Parameter) float64 {
	switch p {
	case TaxRate:
		return b.TaxRate
	case SellingPrice:
		return b.SellingPrice
	}
	return b.DiscountRate
}

// Spec configures a sweep. Zero values select the defaults.
type Spec struct {
	Parameter    Parameter
	Steps        int
	StepFraction float64
	Workers      int
}

func (s Spec) withDefaults() Spec {
	if s.Parameter == "" {
		s.Parameter = DiscountRate
	}
	if s.Steps <= 0 {
		s.Steps = DefaultSteps
	}
	if s.StepFraction == 0 {
		s.StepFraction = DefaultStepFraction
	}
	if s.Workers <= 0 {
		s.Workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// Point is the outcome of one grid evaluation. Series is nil when Err is set.
type Point struct {
	Offset  int                `json:"offset"`
	Label   string             `json:"label"`
	Value   float64            `json:"value"`
	Primary bool               `json:"primary"`
	Series  []float64          `json:"series,omitempty"`
	Summary *valuation.Summary `json:"summary,omitempty"`
	Err     error              `json:"-"`

	table *valuation.Table
}

// Result is a completed (or partially completed) sweep, ordered by grid offset.
type Result struct {
	Parameter Parameter `json:"parameter"`
	Years     []int     `json:"years"`
	Points    []Point   `json:"points"`
}

// Series maps each successful point's label to its cumulative NPV series.
func (r *Result) Series() map[string][]float64 {
	out := make(map[string][]float64, len(r.Points))
	for _, p := range r.Points {
		if p.Err == nil {
			out[p.Label] = p.Series
		}
	}
	return out
}

// Primary returns the DCF table of the unperturbed point, or nil if it failed.
func (r *Result) Primary() *valuation.Table {
	for _, p := range r.Points {
		if p.Primary {
			return p.table
		}
	}
	return nil
}

// Failed returns the points that did not produce a series.
func (r *Result) Failed() []Point {
	var out []Point
	for _, p := range r.Points {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// Run evaluates every grid point with a bounded worker pool. Points are independent, so a
// failing point is marked and the rest still complete. When ctx is cancelled, points not
// yet started are marked with the context error and the partial result is returned along
// with that error.
func Run(ctx context.Context, b Baseline, spec Spec) (*Result, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	spec = spec.withDefaults()
	if _, err := ParseParameter(string(spec.Parameter)); err != nil {
		return nil, err
	}

	values := Grid(b.value(spec.Parameter), spec.Steps, spec.StepFraction)
	res := &Result{
		Parameter: spec.Parameter,
		Points:    make([]Point, len(values)),
	}
	seen := make(map[string]bool, len(values))
	for i, v := range values {
		offset := i - spec.Steps
		label := spec.Parameter.Label(v)
		if seen[label] {
			label = fmt.Sprintf("%s [%+d]", label, offset)
		}
		seen[label] = true
		res.Points[i] = Point{Offset: offset, Label: label, Value: v, Primary: offset == 0}
	}

	var eg errgroup.Group
	eg.SetLimit(spec.Workers)
	for i := range res.Points {
		p := &res.Points[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				p.Err = err
				return nil
			}
			table, err := evaluate(b, spec.Parameter, p.Value)
			if err != nil {
				p.Err = err
				return nil
			}
			sum := valuation.Summarize(table)
			p.table = table
			p.Summary = &sum
			p.Series = table.Column(valuation.ColCumulativeNPV)
			return nil
		})
	}
	_ = eg.Wait()

	for _, p := range res.Points {
		if p.table != nil {
			res.Years = p.table.Years()
			break
		}
	}
	return res, ctx.Err()
}

func (b Baseline) validate() error {
	switch {
	case b.Elec == nil:
		return fmt.Errorf("%w: sensitivity requires %s result", model.ErrStageOrder, model.StageElectrolyser)
	case b.Capex == nil:
		return fmt.Errorf("%w: sensitivity requires %s result", model.ErrStageOrder, model.StageCapex)
	case b.Opex == nil:
		return fmt.Errorf("%w: sensitivity requires %s result", model.ErrStageOrder, model.StageOpex)
	case b.CashFlow == nil:
		return fmt.Errorf("%w: sensitivity requires %s result", model.ErrStageOrder, model.StageCashFlow)
	}
	return nil
}

// evaluate runs one grid point, holding every other input at its base value.
func evaluate(b Baseline, p Parameter, v float64) (*valuation.Table, error) {
	in := valuation.DCFInput{
		CashFlow:           b.CashFlow,
		Opex:               b.Opex,
		DiscountRate:       b.DiscountRate,
		TaxRate:            b.TaxRate,
		AllowTaxLossCredit: b.AllowTaxLossCredit,
	}
	switch p {
	case DiscountRate:
		in.DiscountRate = v
	case TaxRate:
		in.TaxRate = v
	case SellingPrice:
		cf, err := model.CashFlow(b.CashFlowInputs, b.Capex, b.Elec, v)
		if err != nil {
			return nil, err
		}
		in.CashFlow = cf
	}
	return valuation.CalculateDCF(in)
}
