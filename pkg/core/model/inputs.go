package model

import "electrolyser_tea/pkg/core/params"

// ElectrolyserInputs are the electrolyser table plus the electricity tariff.
type ElectrolyserInputs struct {
	FaradaicConstant     float64 `json:"faradaic_constant"`     // C/mol
	Time                 float64 `json:"time"`                  // h
	Electrons            float64 `json:"no_of_electrons"`
	FaradaicEfficiency   float64 `json:"faradaic_efficiency"`   // %
	MolarWeight          float64 `json:"molar_weight"`          // g/mol
	Capacity             float64 `json:"capacity"`              // kg/h
	CapacityFactor       float64 `json:"capacity_factor"`       // 0..1
	CurrentDensity       float64 `json:"current_density"`       // A/m2
	ReactorUnitCost      float64 `json:"reactor_cost"`          // $/m2
	CellVoltage          float64 `json:"e_cell"`                // V
	BalanceOfPlantPct    float64 `json:"balance_of_plant"`      // % of reactor capital
	MaintenanceFrequency float64 `json:"maintenance_frequency"`
	MaintenanceFactor    float64 `json:"maintenance_factor"`    // % of electrolyser capital
	CatalystPct          float64 `json:"catalyst_percentage"`   // % of reactor capital
	CatalystLifespan     float64 `json:"catalyst_lifespan"`     // yr
	InstallationPct      float64 `json:"electrolyser_installation_cost"`
	SeparationPct        float64 `json:"separation_cost"` // % of electricity cost
	ElectricityUnitCost  float64 `json:"electricity_unit_cost"`
}

// BindElectrolyserInputs reads the electrolyser subset of s.
func BindElectrolyserInputs(s *params.Store, diag *params.Diagnostics) ElectrolyserInputs {
	get := func(key string) float64 { return s.Get(params.Electrolyser, key, diag) }
	return ElectrolyserInputs{
		FaradaicConstant:     get("faradaic_constant"),
		Time:                 get("time"),
		Electrons:            get("no_of_electrons"),
		FaradaicEfficiency:   get("faradaic_efficiency"),
		MolarWeight:          get("molar_weight"),
		Capacity:             get("capacity"),
		CapacityFactor:       get("capacity_factor"),
		CurrentDensity:       get("current_density"),
		ReactorUnitCost:      get("reactor_cost"),
		CellVoltage:          get("e_cell"),
		BalanceOfPlantPct:    get("balance_of_plant"),
		MaintenanceFrequency: get("maintenance_frequency"),
		MaintenanceFactor:    get("maintenance_factor"),
		CatalystPct:          get("catalyst_percentage"),
		CatalystLifespan:     get("catalyst_lifespan"),
		InstallationPct:      get("electrolyser_installation_cost"),
		SeparationPct:        get("separation_cost"),
		ElectricityUnitCost:  s.Get(params.OpexFactors, "electricity_unit_cost", diag),
	}
}

// CapexInputs are the pretreatment PEC and the CAPEX percentage factors (0-100).
type CapexInputs struct {
	PretreatPEC                float64 `json:"pretreat_pec"`
	InstallationPct            float64 `json:"installation"`
	ControlsInstrumentationPct float64 `json:"controls_and_instrumentation"`
	PipingElectricalPct        float64 `json:"piping_and_electricals"`
	BuildingServicesPct        float64 `json:"building_and_services"`
	IndirectPct                float64 `json:"indirect_cost"`
	StartupPct                 float64 `json:"startup_cost"`
	WorkingCapitalPct          float64 `json:"working_capital"`
}

// BindCapexInputs reads the CAPEX subset of s.
func BindCapexInputs(s *params.Store, diag *params.Diagnostics) CapexInputs {
	get := func(key string) float64 { return s.Get(params.CapexFactors, key, diag) }
	return CapexInputs{
		PretreatPEC:                s.Get(params.Pretreat, "pretreat_pec", diag),
		InstallationPct:            get("installation"),
		ControlsInstrumentationPct: get("controls_and_instrumentation"),
		PipingElectricalPct:        get("piping_and_electricals"),
		BuildingServicesPct:        get("building_and_services"),
		IndirectPct:                get("indirect_cost"),
		StartupPct:                 get("startup_cost"),
		WorkingCapitalPct:          get("working_capital"),
	}
}

// OpexInputs are the OPEX factors plus the water unit cost from the cash-flow table.
type OpexInputs struct {
	BaseLabourWage          float64 `json:"base_labour_wage"`
	Labourers               float64 `json:"no_of_labourers"`
	SupervisionPct          float64 `json:"supervision"`
	DirectOverheadPct       float64 `json:"direct_overhead"`
	GeneralOverheadPct      float64 `json:"general_overhead"`
	InsurancePct            float64 `json:"insurance"`
	MiscellaneousPct        float64 `json:"miscellaneous"`
	LaboratoryPct           float64 `json:"laboratory_cost"`
	WorkingCapitalFinancing float64 `json:"working_capital_financing"`
	ElectricityUnitCost     float64 `json:"electricity_unit_cost"`
	RawMaterial             float64 `json:"raw_material"`
	PumpPower               float64 `json:"pump_power"`
	ChemicalUnitCost        float64 `json:"chemical_cost"`
	ChemicalQuantity        float64 `json:"chemical_quantity"`
	WaterUnitCost           float64 `json:"water_cost_price"`
}

// BindOpexInputs reads the OPEX subset of s.
func BindOpexInputs(s *params.Store, diag *params.Diagnostics) OpexInputs {
	get := func(key string) float64 { return s.Get(params.OpexFactors, key, diag) }
	return OpexInputs{
		BaseLabourWage:          get("base_labour_wage"),
		Labourers:               get("no_of_labourers"),
		SupervisionPct:          get("supervision"),
		DirectOverheadPct:       get("direct_overhead"),
		GeneralOverheadPct:      get("general_overhead"),
		InsurancePct:            get("insurance"),
		MiscellaneousPct:        get("miscellaneous"),
		LaboratoryPct:           get("laboratory_cost"),
		WorkingCapitalFinancing: get("working_capital_financing"),
		ElectricityUnitCost:     get("electricity_unit_cost"),
		RawMaterial:             get("raw_material"),
		PumpPower:               get("pump_power"),
		ChemicalUnitCost:        get("chemical_cost"),
		ChemicalQuantity:        get("chemical_quantity"),
		WaterUnitCost:           s.Get(params.CashFlow, "water_cost_price", diag),
	}
}

// CashFlowInputs are the financial factors from the cash-flow table.
type CashFlowInputs struct {
	TaxRate              float64 `json:"tax_rate"`      // %
	DiscountRate         float64 `json:"discount_rate"` // %
	WaterCostPrice       float64 `json:"water_cost_price"`
	WaterSellingPrice    float64 `json:"water_selling_price"`
	ProductSellingPrice  float64 `json:"ammonia_selling_price"`
	ChemicalSellingPrice float64 `json:"chemical_selling_price"`
	DepreciationYears    float64 `json:"depreciation_time"`
	PlantLife            float64 `json:"life_of_plant"`
	LandPct              float64 `json:"land"`
	TreatedWaterQuantity float64 `json:"treated_water_quantity"`
}

// BindCashFlowInputs reads the cash-flow subset of s.
func BindCashFlowInputs(s *params.Store, diag *params.Diagnostics) CashFlowInputs {
	get := func(key string) float64 { return s.Get(params.CashFlow, key, diag) }
	return CashFlowInputs{
		TaxRate:              get("tax_rate"),
		DiscountRate:         get("discount_rate"),
		WaterCostPrice:       get("water_cost_price"),
		WaterSellingPrice:    get("water_selling_price"),
		ProductSellingPrice:  get("ammonia_selling_price"),
		ChemicalSellingPrice: get("chemical_selling_price"),
		DepreciationYears:    get("depreciation_time"),
		PlantLife:            get("life_of_plant"),
		LandPct:              get("land"),
		TreatedWaterQuantity: get("treated_water_quantity"),
	}
}
