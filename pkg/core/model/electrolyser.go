// Package model implements the staged techno-economic formulas: electrolyser physics and
// cost, CAPEX, OPEX and top-line cash flow. Each stage takes its typed inputs and the
// already computed upstream results, checks its outputs for NaN/Inf and rounds them to
// cents before returning.
package model

const (
	secondsPerHour = 3600.0
	daysPerYear    = 365.0
	hoursPerYear   = 8760.0
	hoursPerDay    = 24.0

	// catalystUtilisation is the empirical factor in the catalyst replacement cost.
	catalystUtilisation = 0.345
)

// OperatingBasis echoes the production basis the electrolyser was sized for, so that
// downstream stages do not need to re-read electrolyser parameters.
type OperatingBasis struct {
	Capacity       float64 `json:"capacity_kg_per_hr"`
	Time           float64 `json:"time_hr"`
	CapacityFactor float64 `json:"capacity_factor"`
}

// ElectrolyserResult holds the electrolyser stack metrics.
type ElectrolyserResult struct {
	Current          float64        `json:"current_a"`
	KgPerYear        float64        `json:"kg_per_year"`
	EnergyPerKg      float64        `json:"energy_kwh_per_kg"`
	PowerKW          float64        `json:"power_kw"`
	ReactorCapital   float64        `json:"reactor_capital"`
	BalanceOfPlant   float64        `json:"balance_of_plant"`
	CatalystCost     float64        `json:"catalyst_cost"`
	InstallationCost float64        `json:"installation_cost"`
	PEC              float64        `json:"electrolyser_pec"`
	TotalCapital     float64        `json:"total_electrolyser_capital"`
	MaintenanceCost  float64        `json:"maintenance_cost"`
	ElectricityCost  float64        `json:"electricity_cost"`
	SeparationCost   float64        `json:"separation_cost"`
	VariableOpex     float64        `json:"variable_opex"`
	FixedOpex        float64        `json:"fixed_opex"`
	Opex             float64        `json:"opex"`
	Basis            OperatingBasis `json:"basis"`
}

func (r *ElectrolyserResult) fields() []field {
	return []field{
		{"current", &r.Current},
		{"kg_per_year", &r.KgPerYear},
		{"energy_per_kg", &r.EnergyPerKg},
		{"power_kw", &r.PowerKW},
		{"reactor_capital", &r.ReactorCapital},
		{"balance_of_plant", &r.BalanceOfPlant},
		{"catalyst_cost", &r.CatalystCost},
		{"installation_cost", &r.InstallationCost},
		{"electrolyser_pec", &r.PEC},
		{"total_electrolyser_capital", &r.TotalCapital},
		{"maintenance_cost", &r.MaintenanceCost},
		{"electricity_cost", &r.ElectricityCost},
		{"separation_cost", &r.SeparationCost},
		{"variable_opex", &r.VariableOpex},
		{"fixed_opex", &r.FixedOpex},
		{"opex", &r.Opex},
	}
}

// KgPerYear converts an hourly capacity to the annual mass figure used by the model.
func KgPerYear(capacity, capacityFactor float64) float64 {
	return capacity * capacityFactor * daysPerYear / hoursPerYear
}

// Electrolyser sizes the stack and prices it.
func Electrolyser(in ElectrolyserInputs) (*ElectrolyserResult, error) {
	current := (in.Electrons * in.FaradaicConstant * in.Capacity) /
		(in.MolarWeight * secondsPerHour * (in.FaradaicEfficiency / 100) * in.Time)
	kgPerYear := KgPerYear(in.Capacity, in.CapacityFactor)

	energyPerKg := current * in.CellVoltage * in.Time / in.Capacity
	powerKW := current * in.CellVoltage / 1000

	area := current / in.CurrentDensity
	reactor := in.ReactorUnitCost * area

	installation := in.InstallationPct * reactor / 100
	bop := in.BalanceOfPlantPct * reactor / 100

	catalystPerKg := (reactor * in.CatalystPct / 100) /
		(catalystUtilisation * in.CatalystLifespan * daysPerYear * in.Capacity)
	catalyst := catalystPerKg * kgPerYear

	pec := reactor + bop
	totalCapital := pec + installation

	maintenance := in.MaintenanceFrequency * in.MaintenanceFactor * totalCapital / 100

	electricityPerKg := powerKW * in.ElectricityUnitCost * hoursPerDay / in.Capacity
	electricity := electricityPerKg * kgPerYear
	separation := in.SeparationPct * electricity / 100

	variable := electricity + catalyst
	fixed := separation + maintenance

	r := &ElectrolyserResult{
		Current:          current,
		KgPerYear:        kgPerYear,
		EnergyPerKg:      energyPerKg,
		PowerKW:          powerKW,
		ReactorCapital:   reactor,
		BalanceOfPlant:   bop,
		CatalystCost:     catalyst,
		InstallationCost: installation,
		PEC:              pec,
		TotalCapital:     totalCapital,
		MaintenanceCost:  maintenance,
		ElectricityCost:  electricity,
		SeparationCost:   separation,
		VariableOpex:     variable,
		FixedOpex:        fixed,
		Opex:             variable + fixed,
		Basis: OperatingBasis{
			Capacity:       in.Capacity,
			Time:           in.Time,
			CapacityFactor: in.CapacityFactor,
		},
	}
	if err := finalize(StageElectrolyser, r.fields()); err != nil {
		return nil, err
	}
	return r, nil
}
