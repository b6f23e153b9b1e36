package valuation

import (
	"math"

	"electrolyser_tea/pkg/core/model"
)

// Horizon of the DCF statement: construction in years 0-1, operation from year 2.
const (
	Years                = 21
	FinalYear            = Years - 1
	FirstOperatingYear   = 2
	LastDepreciationYear = 16

	// RampUpRevenueShare is the share of full revenue earned in the first operating year.
	RampUpRevenueShare = 2.0 / 3.0

	// Scale converts base currency to millions in the reported table.
	Scale = 1_000_000
)

// DCFInput encapsulates all inputs required for the discounted cash flow statement
type DCFInput struct {
	CashFlow     *model.CashFlowResult
	Opex         *model.OpexResult
	DiscountRate float64 // %, e.g. 10
	TaxRate      float64 // %, e.g. 25

	// AllowTaxLossCredit applies the tax rate to negative pre-tax profit, producing a
	// credit. When false, tax is floored at zero.
	AllowTaxLossCredit bool
}

// Row is one year of the DCF statement.
type Row struct {
	Year               int     `json:"year"`
	Investment         float64 `json:"annual_investment"`
	OperatingCost      float64 `json:"operating_cost"`
	Revenue            float64 `json:"revenue"`
	Depreciation       float64 `json:"depreciation"`
	PreTaxProfit       float64 `json:"net_profit_before_taxes"`
	Tax                float64 `json:"federal_income_tax"`
	PostTaxProfit      float64 `json:"net_profit_after_taxes"`
	FreeCashFlow       float64 `json:"free_cash_flow"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
	NPV                float64 `json:"npv"`
	CumulativeNPV      float64 `json:"cumulative_npv"`
}

// Table is the 21-row DCF statement. Rows are in millions rounded to cents of a million;
// Raw keeps the unscaled values the running sums were computed on.
type Table struct {
	DiscountRate float64 `json:"discount_rate"`
	TaxRate      float64 `json:"tax_rate"`
	Rows         []Row   `json:"rows"`
	Raw          []Row   `json:"-"`
}

// CalculateDCF builds the year-indexed statement.
func CalculateDCF(input DCFInput) (*Table, error) {
	if input.CashFlow == nil {
		return nil, missing(model.StageCashFlow)
	}
	if input.Opex == nil {
		return nil, missing(model.StageOpex)
	}
	cf := input.CashFlow
	opex := input.Opex.Total

	raw := make([]Row, Years)
	var cumCF, cumNPV float64
	for year := range raw {
		r := Row{Year: year}

		// 1. Investment schedule: half of TCI per construction year, land up front,
		// working capital in year 1, both recovered in the final year.
		switch year {
		case 0:
			r.Investment = 0.5*cf.TotalCapitalInvestment + cf.LandCost
		case 1:
			r.Investment = 0.5*cf.TotalCapitalInvestment + cf.WorkingCapital
		}
		if year == FinalYear {
			r.Investment += -(cf.LandCost + cf.WorkingCapital)
		}

		// 2. Operation
		if year >= FirstOperatingYear {
			r.OperatingCost = opex
			r.Revenue = cf.TotalRevenue
			if year == FirstOperatingYear {
				r.Revenue = RampUpRevenueShare * cf.TotalRevenue
			}
		}
		if year >= FirstOperatingYear && year <= LastDepreciationYear {
			r.Depreciation = cf.Depreciation
		}

		// 3. Profit and tax. Tax only applies once the plant operates.
		r.PreTaxProfit = r.Revenue - r.OperatingCost - r.Depreciation - r.Investment
		if year >= FirstOperatingYear {
			r.Tax = input.TaxRate / 100 * r.PreTaxProfit
			if r.Tax < 0 && !input.AllowTaxLossCredit {
				r.Tax = 0
			}
		}
		r.PostTaxProfit = r.PreTaxProfit - r.Tax

		// 4. Cash flow (depreciation is a non-cash charge) and discounting
		r.FreeCashFlow = r.PostTaxProfit + r.Depreciation
		cumCF += r.FreeCashFlow
		r.CumulativeCashFlow = cumCF
		r.NPV = r.FreeCashFlow / math.Pow(1+input.DiscountRate/100, float64(year))
		cumNPV += r.NPV
		r.CumulativeNPV = cumNPV

		raw[year] = r
	}

	rows := make([]Row, Years)
	for i, r := range raw {
		if err := checkRow(r); err != nil {
			return nil, err
		}
		rows[i] = scaleRow(r)
	}

	return &Table{
		DiscountRate: input.DiscountRate,
		TaxRate:      input.TaxRate,
		Rows:         rows,
		Raw:          raw,
	}, nil
}

func scaleRow(r Row) Row {
	s := func(v float64) float64 { return model.Round2(v / Scale) }
	return Row{
		Year:               r.Year,
		Investment:         s(r.Investment),
		OperatingCost:      s(r.OperatingCost),
		Revenue:            s(r.Revenue),
		Depreciation:       s(r.Depreciation),
		PreTaxProfit:       s(r.PreTaxProfit),
		Tax:                s(r.Tax),
		PostTaxProfit:      s(r.PostTaxProfit),
		FreeCashFlow:       s(r.FreeCashFlow),
		CumulativeCashFlow: s(r.CumulativeCashFlow),
		NPV:                s(r.NPV),
		CumulativeNPV:      s(r.CumulativeNPV),
	}
}
