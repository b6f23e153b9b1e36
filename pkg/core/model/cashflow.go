package model

// CashFlowResult holds the top-line figures the DCF table is built from.
type CashFlowResult struct {
	LandCost               float64 `json:"land_cost"`
	TotalCapitalInvestment float64 `json:"total_capital_investment"`
	Depreciation           float64 `json:"depreciation"`
	TotalPEC               float64 `json:"total_pec"`
	WorkingCapital         float64 `json:"working_capital"`
	TotalRevenue           float64 `json:"total_revenue"`
	WaterRevenue           float64 `json:"water_revenue"`
	ProductRevenue         float64 `json:"product_revenue"`
	SellingPrice           float64 `json:"selling_price"`
}

func (r *CashFlowResult) fields() []field {
	return []field{
		{"land_cost", &r.LandCost},
		{"total_capital_investment", &r.TotalCapitalInvestment},
		{"depreciation", &r.Depreciation},
		{"total_pec", &r.TotalPEC},
		{"working_capital", &r.WorkingCapital},
		{"total_revenue", &r.TotalRevenue},
		{"water_revenue", &r.WaterRevenue},
		{"product_revenue", &r.ProductRevenue},
		{"selling_price", &r.SellingPrice},
	}
}

// CashFlow computes land, investment, depreciation and revenue. sellingPrice is the
// product price per kg; callers pass in.ProductSellingPrice unless they are sweeping it.
func CashFlow(in CashFlowInputs, capex *CapexResult, elec *ElectrolyserResult, sellingPrice float64) (*CashFlowResult, error) {
	if elec == nil {
		return nil, missingUpstream(StageCashFlow, StageElectrolyser)
	}
	if capex == nil {
		return nil, missingUpstream(StageCashFlow, StageCapex)
	}
	b := elec.Basis

	land := in.LandPct * capex.FCI / 100
	water := in.WaterSellingPrice * in.TreatedWaterQuantity * b.CapacityFactor
	product := sellingPrice * (b.Capacity / b.Time) * b.CapacityFactor

	r := &CashFlowResult{
		LandCost:               land,
		TotalCapitalInvestment: capex.FCI + land + capex.WorkingCapital,
		Depreciation:           capex.TotalPEC / in.DepreciationYears,
		TotalPEC:               capex.TotalPEC,
		WorkingCapital:         capex.WorkingCapital,
		TotalRevenue:           water + product,
		WaterRevenue:           water,
		ProductRevenue:         product,
		SellingPrice:           sellingPrice,
	}
	if err := finalize(StageCashFlow, r.fields()); err != nil {
		return nil, err
	}
	return r, nil
}
