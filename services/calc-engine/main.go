package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"electrolyser_tea/pkg/core/model"
	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/utils"
	"electrolyser_tea/pkg/core/valuation"
)

func main() {
	mode := flag.String("mode", "calculate", "Mode: check or calculate")
	dataStr := flag.String("data", "", "JSON parameter payload: {category: {key: value}}")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	var tables map[string]map[string]float64
	if _, err := utils.SmartParse([]byte(*dataStr), &tables); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}
	st, err := params.New(tables)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	res := pipeline.NewOrchestrator(nil, pipeline.Options{}).Run(context.Background(), st, pipeline.Overrides{})
	if !res.Complete {
		fmt.Printf("Error: %v\n", res.Err)
		os.Exit(1)
	}

	switch *mode {
	case "check":
		if failed := runChecks(res); failed > 0 {
			os.Exit(1)
		}
	case "calculate":
		runCalculations(res)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(2)
	}
}

// check is one accounting identity over a completed run.
type check struct {
	name      string
	got, want float64
	tolerance float64
}

func identities(res *pipeline.Result) []check {
	var npvSum float64
	for _, r := range res.DCF.Raw {
		npvSum += r.NPV
	}
	last := res.DCF.Raw[valuation.FinalYear]

	return []check{
		{"total PEC = pretreat PEC + electrolyser PEC", res.Capex.TotalPEC, res.CashFlow.TotalPEC, 0},
		{"CAPEX = FCI + startup + working capital", res.Capex.Total,
			model.Round2(res.Capex.FCI + res.Capex.Startup + res.Capex.WorkingCapital), 0.02},
		{"OPEX = fixed + variable", res.Opex.Total, model.Round2(res.Opex.Fixed + res.Opex.Variable), 0.02},
		{"cumulative NPV = sum of NPV", last.CumulativeNPV, npvSum, 1e-6},
		{"year 20 investment = -(land + working capital)", last.Investment,
			-(res.CashFlow.LandCost + res.CashFlow.WorkingCapital), 1e-9},
	}
}

func runChecks(res *pipeline.Result) int {
	failed := 0
	for _, c := range identities(res) {
		if diff := math.Abs(c.got - c.want); diff > c.tolerance {
			fmt.Printf("Error: %s (Diff: %f)\n", c.name, diff)
			failed++
			continue
		}
		fmt.Printf("Success: %s\n", c.name)
	}
	return failed
}

func runCalculations(res *pipeline.Result) {
	out := struct {
		Summary *valuation.Summary `json:"summary"`
		Rows    []valuation.Row    `json:"rows"`
	}{res.Summary, res.DCF.Rows}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
	fmt.Println("Calculations complete.")
}
