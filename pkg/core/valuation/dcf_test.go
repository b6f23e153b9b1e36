package valuation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"electrolyser_tea/pkg/core/model"
	"electrolyser_tea/pkg/core/params/paramstest"
)

func referenceInputs(t *testing.T) (*model.CashFlowResult, *model.OpexResult) {
	t.Helper()
	s := paramstest.Store()
	elec, err := model.Electrolyser(model.BindElectrolyserInputs(s, nil))
	if err != nil {
		t.Fatal(err)
	}
	capex, err := model.Capex(model.BindCapexInputs(s, nil), elec)
	if err != nil {
		t.Fatal(err)
	}
	opex, err := model.Opex(model.BindOpexInputs(s, nil), capex, elec)
	if err != nil {
		t.Fatal(err)
	}
	in := model.BindCashFlowInputs(s, nil)
	cf, err := model.CashFlow(in, capex, elec, in.ProductSellingPrice)
	if err != nil {
		t.Fatal(err)
	}
	return cf, opex
}

func referenceTable(t *testing.T, discount, tax float64) *Table {
	t.Helper()
	cf, opex := referenceInputs(t)
	table, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: opex, DiscountRate: discount, TaxRate: tax})
	if err != nil {
		t.Fatalf("CalculateDCF: %v", err)
	}
	return table
}

func TestCalculateDCF_Shape(t *testing.T) {
	table := referenceTable(t, 10, 25)

	if len(table.Rows) != Years || len(table.Raw) != Years {
		t.Fatalf("expected %d rows, got %d/%d", Years, len(table.Rows), len(table.Raw))
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, table.Years()); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
	if got := table.Column("Not A Column"); got != nil {
		t.Errorf("unknown column should return nil, got %v", got)
	}
	if len(Columns) != 12 {
		t.Errorf("expected Year + 11 value columns, got %d", len(Columns))
	}
}

func TestCalculateDCF_ReferenceFigures(t *testing.T) {
	table := referenceTable(t, 10, 25)
	rows := table.Rows

	checks := []struct {
		name      string
		got, want float64
	}{
		{"investment[0]", rows[0].Investment, 0.34},
		{"investment[1]", rows[1].Investment, 0.41},
		{"revenue[2]", rows[2].Revenue, 0.66},
		{"revenue[3]", rows[3].Revenue, 0.99},
		{"investment[20]", rows[20].Investment, -0.09},
		{"cumulative_cf[20]", rows[20].CumulativeCashFlow, 7.36},
		{"cumulative_npv[20]", rows[20].CumulativeNPV, 2.42},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestCalculateDCF_DepreciationWindow(t *testing.T) {
	table := referenceTable(t, 10, 25)
	dep := table.Raw[2].Depreciation
	if dep <= 0 {
		t.Fatalf("expected positive depreciation in year 2, got %v", dep)
	}

	boundaries := map[int]float64{1: 0, 2: dep, 16: dep, 17: 0}
	for year, want := range boundaries {
		if got := table.Raw[year].Depreciation; got != want {
			t.Errorf("depreciation[%d]: expected %v, got %v", year, want, got)
		}
	}

	n := 0
	for _, r := range table.Raw {
		if r.Depreciation != 0 {
			n++
		}
	}
	if n != 15 {
		t.Errorf("expected 15 depreciation years, got %d", n)
	}
}

func TestCalculateDCF_CumulativeNPVIsRunningSum(t *testing.T) {
	for _, rate := range []float64{0, 7, 10, 13} {
		table := referenceTable(t, rate, 25)
		var sum float64
		for _, r := range table.Raw {
			sum += r.NPV
		}
		if got := table.Raw[FinalYear].CumulativeNPV; got != sum {
			t.Errorf("rate %v: cumulative NPV %v != sum of NPV %v", rate, got, sum)
		}
	}
}

func TestCalculateDCF_FinalYearRecovery(t *testing.T) {
	cf, opex := referenceInputs(t)
	for _, rate := range []float64{7, 10, 13} {
		for _, tax := range []float64{0, 25, 40} {
			table, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: opex, DiscountRate: rate, TaxRate: tax})
			if err != nil {
				t.Fatal(err)
			}
			want := -(cf.LandCost + cf.WorkingCapital)
			if got := table.Raw[FinalYear].Investment; got != want {
				t.Errorf("rate %v tax %v: year 20 investment %v, want %v", rate, tax, got, want)
			}
		}
	}
}

func TestCalculateDCF_NPVOfKnownCashFlow(t *testing.T) {
	cf := &model.CashFlowResult{TotalRevenue: 1_000_000}
	table, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: &model.OpexResult{}, DiscountRate: 10})
	if err != nil {
		t.Fatal(err)
	}

	if got := table.Raw[5].FreeCashFlow; got != 1_000_000 {
		t.Fatalf("expected FCF[5] = 1,000,000, got %v", got)
	}
	if got := model.Round2(table.Raw[5].NPV); got != 620921.32 {
		t.Errorf("expected NPV[5] = 620921.32, got %v", got)
	}
	if got := table.Rows[5].NPV; got != 0.62 {
		t.Errorf("expected scaled NPV[5] = 0.62, got %v", got)
	}
}

func TestCalculateDCF_TaxOnlyFromFirstOperatingYear(t *testing.T) {
	cf, opex := referenceInputs(t)
	table, err := CalculateDCF(DCFInput{
		CashFlow: cf, Opex: opex, DiscountRate: 10, TaxRate: 25, AllowTaxLossCredit: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, year := range []int{0, 1} {
		if table.Raw[year].PreTaxProfit >= 0 {
			t.Fatalf("year %d should be loss making", year)
		}
		if table.Raw[year].Tax != 0 {
			t.Errorf("year %d: expected no tax, got %v", year, table.Raw[year].Tax)
		}
	}
	if table.Raw[2].Tax <= 0 {
		t.Errorf("year 2 should be taxed, got %v", table.Raw[2].Tax)
	}
}

func TestCalculateDCF_LossCredit(t *testing.T) {
	cf := &model.CashFlowResult{TotalRevenue: 100}
	opex := &model.OpexResult{Total: 1000}

	floored, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: opex, TaxRate: 30})
	if err != nil {
		t.Fatal(err)
	}
	if floored.Raw[5].Tax != 0 {
		t.Errorf("expected tax floored at 0, got %v", floored.Raw[5].Tax)
	}

	credited, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: opex, TaxRate: 30, AllowTaxLossCredit: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := 0.3 * -900.0; math.Abs(credited.Raw[5].Tax-want) > 1e-9 {
		t.Errorf("expected tax credit %v, got %v", want, credited.Raw[5].Tax)
	}
}

func TestCalculateDCF_HigherDiscountRateShrinksNPV(t *testing.T) {
	low := referenceTable(t, 8, 25)
	high := referenceTable(t, 12, 25)

	for year := 1; year < Years; year++ {
		l, h := low.Raw[year].NPV, high.Raw[year].NPV
		if low.Raw[year].FreeCashFlow > 0 && !(h < l) {
			t.Errorf("year %d: NPV at 12%% (%v) should be below NPV at 8%% (%v)", year, h, l)
		}
		if math.Abs(h) >= math.Abs(l) {
			t.Errorf("year %d: |NPV| should shrink with the discount rate (%v vs %v)", year, h, l)
		}
	}
	if low.Raw[0].NPV != high.Raw[0].NPV {
		t.Errorf("year 0 is undiscounted: %v vs %v", low.Raw[0].NPV, high.Raw[0].NPV)
	}
}

func TestCalculateDCF_MissingUpstream(t *testing.T) {
	if _, err := CalculateDCF(DCFInput{Opex: &model.OpexResult{}}); !errors.Is(err, model.ErrStageOrder) {
		t.Errorf("expected ErrStageOrder without cash flow, got %v", err)
	}
	if _, err := CalculateDCF(DCFInput{CashFlow: &model.CashFlowResult{}}); !errors.Is(err, model.ErrStageOrder) {
		t.Errorf("expected ErrStageOrder without opex, got %v", err)
	}
}

func TestCalculateDCF_NonFiniteDiscounting(t *testing.T) {
	cf, opex := referenceInputs(t)
	_, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: opex, DiscountRate: -100})
	var nf *model.NonFiniteError
	if !errors.As(err, &nf) || nf.Stage != model.StageDCF {
		t.Fatalf("expected DCF NonFiniteError, got %v", err)
	}
}

func TestSummarize_Reference(t *testing.T) {
	s := Summarize(referenceTable(t, 10, 25))

	want := Summary{
		DiscountRate:            10,
		TaxRate:                 25,
		NPV:                     2.42,
		FinalCumulativeCashFlow: 7.36,
		PeakFunding:             -0.75,
		PaybackYear:             4,
		DiscountedPaybackYear:   4,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_NeverPaysBack(t *testing.T) {
	cf := &model.CashFlowResult{TotalCapitalInvestment: 1e6}
	table, err := CalculateDCF(DCFInput{CashFlow: cf, Opex: &model.OpexResult{Total: 10}, DiscountRate: 5})
	if err != nil {
		t.Fatal(err)
	}
	s := Summarize(table)
	if s.PaybackYear != -1 || s.DiscountedPaybackYear != -1 {
		t.Errorf("expected no payback, got %+v", s)
	}
}
