package model

// OpexResult is the annual operating cost breakdown.
type OpexResult struct {
	Labour                  float64 `json:"labour_cost"`
	Supervision             float64 `json:"supervision_cost"`
	DirectOverhead          float64 `json:"direct_overhead_cost"`
	GeneralOverhead         float64 `json:"general_overhead_cost"`
	Insurance               float64 `json:"insurance_cost"`
	Miscellaneous           float64 `json:"miscellaneous_cost"`
	Laboratory              float64 `json:"laboratory_cost"`
	WorkingCapitalFinancing float64 `json:"working_capital_financing_cost"`
	RawMaterial             float64 `json:"raw_material_cost"`
	Chemicals               float64 `json:"chemical_cost"`
	SeparationElectricity   float64 `json:"separation_electricity_cost"`
	Fixed                   float64 `json:"fixed_operating_cost"`
	Variable                float64 `json:"variable_operating_cost"`
	Total                   float64 `json:"opex"`
}

func (r *OpexResult) fields() []field {
	return []field{
		{"labour_cost", &r.Labour},
		{"supervision_cost", &r.Supervision},
		{"direct_overhead_cost", &r.DirectOverhead},
		{"general_overhead_cost", &r.GeneralOverhead},
		{"insurance_cost", &r.Insurance},
		{"miscellaneous_cost", &r.Miscellaneous},
		{"laboratory_cost", &r.Laboratory},
		{"working_capital_financing_cost", &r.WorkingCapitalFinancing},
		{"raw_material_cost", &r.RawMaterial},
		{"chemical_cost", &r.Chemicals},
		{"separation_electricity_cost", &r.SeparationElectricity},
		{"fixed_operating_cost", &r.Fixed},
		{"variable_operating_cost", &r.Variable},
		{"opex", &r.Total},
	}
}

// Opex prices a year of operation. Insurance and miscellaneous scale with FCI, labour
// related items with the labour bill.
func Opex(in OpexInputs, capex *CapexResult, elec *ElectrolyserResult) (*OpexResult, error) {
	if elec == nil {
		return nil, missingUpstream(StageOpex, StageElectrolyser)
	}
	if capex == nil {
		return nil, missingUpstream(StageOpex, StageCapex)
	}
	cf := elec.Basis.CapacityFactor

	labour := in.BaseLabourWage * in.Labourers
	supervision := in.SupervisionPct * labour / 100
	directOverhead := in.DirectOverheadPct * (labour + supervision) / 100
	generalOverhead := in.GeneralOverheadPct * (labour + supervision + directOverhead) / 100
	insurance := in.InsurancePct * capex.FCI / 100
	misc := in.MiscellaneousPct * capex.FCI / 100
	laboratory := in.LaboratoryPct * labour / 100
	wcFinancing := in.WorkingCapitalFinancing * capex.WorkingCapital / 100

	fixed := labour + supervision + directOverhead + generalOverhead + insurance + misc +
		laboratory + wcFinancing + elec.FixedOpex

	rawMaterial := in.RawMaterial * in.WaterUnitCost
	chemicals := in.ChemicalUnitCost * in.ChemicalQuantity * cf
	sepElectricity := in.ElectricityUnitCost * in.PumpPower * cf
	variable := sepElectricity + rawMaterial + elec.VariableOpex + chemicals

	r := &OpexResult{
		Labour:                  labour,
		Supervision:             supervision,
		DirectOverhead:          directOverhead,
		GeneralOverhead:         generalOverhead,
		Insurance:               insurance,
		Miscellaneous:           misc,
		Laboratory:              laboratory,
		WorkingCapitalFinancing: wcFinancing,
		RawMaterial:             rawMaterial,
		Chemicals:               chemicals,
		SeparationElectricity:   sepElectricity,
		Fixed:                   fixed,
		Variable:                variable,
		Total:                   fixed + variable,
	}
	if err := finalize(StageOpex, r.fields()); err != nil {
		return nil, err
	}
	return r, nil
}
