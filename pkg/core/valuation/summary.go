package valuation

import "electrolyser_tea/pkg/core/model"

// Summary aggregates the headline figures of a DCF statement, in millions.
type Summary struct {
	DiscountRate            float64 `json:"discount_rate"`
	TaxRate                 float64 `json:"tax_rate"`
	NPV                     float64 `json:"npv"`
	FinalCumulativeCashFlow float64 `json:"final_cumulative_cash_flow"`
	PeakFunding             float64 `json:"peak_funding"`
	PaybackYear             int     `json:"payback_year"`            // -1 when never reached
	DiscountedPaybackYear   int     `json:"discounted_payback_year"` // -1 when never reached
}

// Summarize reads the terminal and aggregate statistics off t. Thresholds are evaluated
// on the unscaled values so that rounding cannot move a payback year.
func Summarize(t *Table) Summary {
	s := Summary{
		DiscountRate:          t.DiscountRate,
		TaxRate:               t.TaxRate,
		PaybackYear:           -1,
		DiscountedPaybackYear: -1,
	}
	if len(t.Raw) == 0 {
		return s
	}

	peak := t.Raw[0].CumulativeCashFlow
	for _, r := range t.Raw {
		if r.CumulativeCashFlow < peak {
			peak = r.CumulativeCashFlow
		}
		if s.PaybackYear < 0 && r.Year > 0 && r.CumulativeCashFlow >= 0 {
			s.PaybackYear = r.Year
		}
		if s.DiscountedPaybackYear < 0 && r.Year > 0 && r.CumulativeNPV >= 0 {
			s.DiscountedPaybackYear = r.Year
		}
	}

	last := t.Raw[len(t.Raw)-1]
	s.NPV = model.Round2(last.CumulativeNPV / Scale)
	s.FinalCumulativeCashFlow = model.Round2(last.CumulativeCashFlow / Scale)
	s.PeakFunding = model.Round2(peak / Scale)
	return s
}
