package model

// CapexResult is the installed capital cost breakdown.
type CapexResult struct {
	Installation            float64 `json:"installation"`
	ControlsInstrumentation float64 `json:"controls_and_instrumentation"`
	PipingElectrical        float64 `json:"piping_and_electricals"`
	BuildingServices        float64 `json:"building_and_services"`
	Indirect                float64 `json:"indirect_cost"`
	Direct                  float64 `json:"direct_cost"`
	FCI                     float64 `json:"fixed_capital_investment"`
	Startup                 float64 `json:"startup_cost"`
	WorkingCapital          float64 `json:"working_capital"`
	Total                   float64 `json:"capex"`
	TotalPEC                float64 `json:"total_pec"`
}

func (r *CapexResult) fields() []field {
	return []field{
		{"installation", &r.Installation},
		{"controls_and_instrumentation", &r.ControlsInstrumentation},
		{"piping_and_electricals", &r.PipingElectrical},
		{"building_and_services", &r.BuildingServices},
		{"indirect_cost", &r.Indirect},
		{"direct_cost", &r.Direct},
		{"fixed_capital_investment", &r.FCI},
		{"startup_cost", &r.Startup},
		{"working_capital", &r.WorkingCapital},
		{"capex", &r.Total},
		{"total_pec", &r.TotalPEC},
	}
}

// Capex builds the capital cost from the pretreatment PEC and the electrolyser result.
// The installation-type add-ons apply to the pretreatment PEC only; the electrolyser
// carries its own installation inside TotalCapital.
func Capex(in CapexInputs, elec *ElectrolyserResult) (*CapexResult, error) {
	if elec == nil {
		return nil, missingUpstream(StageCapex, StageElectrolyser)
	}

	pec := in.PretreatPEC
	installation := in.InstallationPct * pec / 100
	controls := in.ControlsInstrumentationPct * pec / 100
	piping := in.PipingElectricalPct * pec / 100
	building := in.BuildingServicesPct * pec / 100

	direct := pec + installation + controls + piping + building + elec.TotalCapital
	indirect := in.IndirectPct * direct / 100
	fci := direct + indirect
	startup := in.StartupPct * fci / 100
	workingCapital := in.WorkingCapitalPct * fci / 100

	r := &CapexResult{
		Installation:            installation,
		ControlsInstrumentation: controls,
		PipingElectrical:        piping,
		BuildingServices:        building,
		Indirect:                indirect,
		Direct:                  direct,
		FCI:                     fci,
		Startup:                 startup,
		WorkingCapital:          workingCapital,
		Total:                   fci + startup + workingCapital,
		TotalPEC:                pec + elec.PEC,
	}
	if err := finalize(StageCapex, r.fields()); err != nil {
		return nil, err
	}
	return r, nil
}
