// Package paramstest provides a reference parameter set for tests.
package paramstest

import "electrolyser_tea/pkg/core/params"

// Tables returns the raw reference tables: a 100 kg/h nitrate-to-ammonia electrolyser
// with a water pretreatment train. Keys use the spellings found in the input workbook.
func Tables() map[string]map[string]float64 {
	return map[string]map[string]float64{
		string(params.Pretreat): {
			"pretreat_pec": 250000,
		},
		string(params.Electrolyser): {
			"Faradaic Constant":              96485,
			"Time":                           1,
			"No of Electrons":                8,
			"Faradaic Efficiency":            90,
			"Molar Weight":                   17.03,
			"Capacity":                       100,
			"Capacity Factor":                0.9,
			"Current Density":                3000,
			"Reactor Cost":                   5000,
			"E Cell":                         2.5,
			"Balance of Plant":               30,
			"Maintenance Frequency":          1,
			"Maintenance Factor":             2.5,
			"Catalyst Percentage":            10,
			"Catalyst Lifespan":              5,
			"Electrolyser Installation Cost": 12,
			"Separation Cost":                20,
		},
		string(params.OpexFactors): {
			"base_labour_wage":          60000,
			"no_of_labourers":           4,
			"supervision":               20,
			"direct_overhead":           15,
			"general_overhead":          10,
			"insurance":                 1,
			"miscellaneous":             1,
			"laboratory_cost":           10,
			"working_capital_financing": 5,
			"electricity_unit_cost":     0.08,
			"raw_material":              1000,
			"pump_power":                50,
			"chemical_cost":             2,
			"chemical_quantity":         5000,
		},
		string(params.CapexFactors): {
			"installation":                 25,
			"controls_and_instrumentation": 10,
			"piping_and_electricals":       15,
			"building_and_services":        20,
			"indirect_cost":                30,
			"startup_cost":                 8,
			"working_capital":              15,
		},
		string(params.CashFlow): {
			"tax_rate":               25,
			"discount_rate":          10,
			"water_cost_price":       0.5,
			"water_selling_price":    2,
			"ammonia_selling_price":  1000,
			"chemical_selling_price": 0,
			"depreciation_time":      15,
			"life_of_plant":          20,
			"land":                   2,
			"treated_water_quantity": 500000,
		},
	}
}

// Store returns the reference tables as a parameter store.
func Store() *params.Store {
	s, err := params.New(Tables())
	if err != nil {
		panic(err)
	}
	return s
}

// Without returns the reference store with key removed from cat.
func Without(cat params.Category, key string) *params.Store {
	tables := Tables()
	n := params.NormalizeKey(key)
	for k := range tables[string(cat)] {
		if params.NormalizeKey(k) == n {
			delete(tables[string(cat)], k)
		}
	}
	s, err := params.New(tables)
	if err != nil {
		panic(err)
	}
	return s
}
