package valuation

import (
	"fmt"
	"math"

	"electrolyser_tea/pkg/core/model"
)

// Column names of the DCF statement, in display order.
const (
	ColYear               = "Year"
	ColInvestment         = "Annual Investment"
	ColOperatingCost      = "Operating Cost"
	ColRevenue            = "Revenue"
	ColDepreciation       = "Depreciation"
	ColPreTaxProfit       = "Net Profit Before Taxes"
	ColTax                = "Federal Income Tax"
	ColPostTaxProfit      = "Net Profit After Taxes"
	ColFreeCashFlow       = "Free Cash Flow"
	ColCumulativeCashFlow = "Cumulative Cash Flow"
	ColNPV                = "Net Present Value (NPV)"
	ColCumulativeNPV      = "Cumulative NPV"
)

// Columns lists every column, Year first.
var Columns = []string{
	ColYear, ColInvestment, ColOperatingCost, ColRevenue, ColDepreciation, ColPreTaxProfit,
	ColTax, ColPostTaxProfit, ColFreeCashFlow, ColCumulativeCashFlow, ColNPV, ColCumulativeNPV,
}

// Value returns the named column of r. ok is false for an unknown column.
func (r Row) Value(col string) (v float64, ok bool) {
	switch col {
	case ColYear:
		return float64(r.Year), true
	case ColInvestment:
		return r.Investment, true
	case ColOperatingCost:
		return r.OperatingCost, true
	case ColRevenue:
		return r.Revenue, true
	case ColDepreciation:
		return r.Depreciation, true
	case ColPreTaxProfit:
		return r.PreTaxProfit, true
	case ColTax:
		return r.Tax, true
	case ColPostTaxProfit:
		return r.PostTaxProfit, true
	case ColFreeCashFlow:
		return r.FreeCashFlow, true
	case ColCumulativeCashFlow:
		return r.CumulativeCashFlow, true
	case ColNPV:
		return r.NPV, true
	case ColCumulativeNPV:
		return r.CumulativeNPV, true
	}
	return 0, false
}

// Column returns the scaled series for col, or nil if col is unknown.
func (t *Table) Column(col string) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		v, ok := r.Value(col)
		if !ok {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// Years returns the year index of every row.
func (t *Table) Years() []int {
	out := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Year
	}
	return out
}

func checkRow(r Row) error {
	for _, col := range Columns[1:] {
		v, _ := r.Value(col)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &model.NonFiniteError{
				Stage: model.StageDCF,
				Field: fmt.Sprintf("%s[%d]", col, r.Year),
				Value: v,
			}
		}
	}
	return nil
}

func missing(upstream string) error {
	return fmt.Errorf("%w: %s requires %s result", model.ErrStageOrder, model.StageDCF, upstream)
}
