package models

import (
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/sensitivity"
	"electrolyser_tea/pkg/core/valuation"
)

// RunRequest is the body of POST /api/tea/run. Parameters override individual entries of
// the loaded parameter snapshot, keyed by category then parameter name.
type RunRequest struct {
	DiscountRate *float64                      `json:"discount_rate,omitempty"`
	TaxRate      *float64                      `json:"tax_rate,omitempty"`
	SellingPrice *float64                      `json:"selling_price,omitempty"`
	Parameters   map[string]map[string]float64 `json:"parameters,omitempty"`
}

// Overrides returns the cash-flow overrides of the request.
func (r RunRequest) Overrides() pipeline.Overrides {
	return pipeline.Overrides{
		DiscountRate: r.DiscountRate,
		TaxRate:      r.TaxRate,
		SellingPrice: r.SellingPrice,
	}
}

// SweepRequest is the body of POST /api/tea/sweep.
type SweepRequest struct {
	RunRequest
	Param string `json:"param"` // discount_rate | tax_rate | selling_price
}

// SweepPoint is one grid point as returned to clients.
type SweepPoint struct {
	Offset  int                `json:"offset"`
	Label   string             `json:"label"`
	Value   float64            `json:"value"`
	Primary bool               `json:"primary"`
	Series  []float64          `json:"series,omitempty"`
	Summary *valuation.Summary `json:"summary,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type SweepResponse struct {
	Base      *pipeline.Result     `json:"base"`
	Parameter string               `json:"parameter"`
	Years     []int                `json:"years"`
	Points    []SweepPoint         `json:"points"`
	Series    map[string][]float64 `json:"series"`
}

// NewSweepResponse flattens a sweep report, carrying point errors as strings.
func NewSweepResponse(rep *pipeline.SweepReport) SweepResponse {
	resp := SweepResponse{Base: rep.Base, Series: rep.Series}
	if rep.Sweep == nil {
		return resp
	}
	resp.Parameter = string(rep.Sweep.Parameter)
	resp.Years = rep.Sweep.Years
	resp.Points = make([]SweepPoint, len(rep.Sweep.Points))
	for i, p := range rep.Sweep.Points {
		resp.Points[i] = newSweepPoint(p)
	}
	return resp
}

func newSweepPoint(p sensitivity.Point) SweepPoint {
	out := SweepPoint{
		Offset:  p.Offset,
		Label:   p.Label,
		Value:   p.Value,
		Primary: p.Primary,
		Series:  p.Series,
		Summary: p.Summary,
	}
	if p.Err != nil {
		out.Error = p.Err.Error()
	}
	return out
}

// ErrorResponse is returned for failed requests. Stages is set when a run did not complete.
type ErrorResponse struct {
	Error  string                 `json:"error"`
	RunID  string                 `json:"run_id,omitempty"`
	Stages []pipeline.StageStatus `json:"stages,omitempty"`
}
