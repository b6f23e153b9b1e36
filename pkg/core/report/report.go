// Package report renders pipeline results as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/valuation"
)

// Markdown renders a run, and optionally a sweep around it, as a Markdown document.
// Incomplete runs render the stage status list only.
func Markdown(res *pipeline.Result, sweep *pipeline.SweepReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Techno-economic assessment\n\n")
	fmt.Fprintf(&b, "Run `%s` at %s\n\n", res.RunID, res.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	writeStages(&b, res)
	if !res.Complete {
		fmt.Fprintf(&b, "\n**Run incomplete.** Results are not shown.\n")
		return b.String()
	}

	if s := res.Summary; s != nil {
		fmt.Fprintf(&b, "\n## Summary\n\n")
		fmt.Fprintf(&b, "| Metric | Value |\n|---|---:|\n")
		fmt.Fprintf(&b, "| Discount rate | %.2f%% |\n", s.DiscountRate)
		fmt.Fprintf(&b, "| Tax rate | %.2f%% |\n", s.TaxRate)
		fmt.Fprintf(&b, "| Selling price | %.2f |\n", res.SellingPrice)
		fmt.Fprintf(&b, "| NPV (M) | %.2f |\n", s.NPV)
		fmt.Fprintf(&b, "| Cumulative cash flow (M) | %.2f |\n", s.FinalCumulativeCashFlow)
		fmt.Fprintf(&b, "| Peak funding (M) | %.2f |\n", s.PeakFunding)
		fmt.Fprintf(&b, "| Payback year | %s |\n", year(s.PaybackYear))
		fmt.Fprintf(&b, "| Discounted payback year | %s |\n", year(s.DiscountedPaybackYear))
	}

	writeKV(&b, "Electrolyser", [][2]string{
		{"Current (A)", num(res.Electrolyser.Current)},
		{"Output (kg/yr)", num(res.Electrolyser.KgPerYear)},
		{"Specific energy (kWh/kg)", num(res.Electrolyser.EnergyPerKg)},
		{"Power (kW)", num(res.Electrolyser.PowerKW)},
		{"PEC", num(res.Electrolyser.PEC)},
		{"Total capital", num(res.Electrolyser.TotalCapital)},
		{"OPEX", num(res.Electrolyser.Opex)},
	})
	writeKV(&b, "CAPEX", [][2]string{
		{"Direct cost", num(res.Capex.Direct)},
		{"Indirect cost", num(res.Capex.Indirect)},
		{"Fixed capital investment", num(res.Capex.FCI)},
		{"Startup", num(res.Capex.Startup)},
		{"Working capital", num(res.Capex.WorkingCapital)},
		{"Total CAPEX", num(res.Capex.Total)},
		{"Total PEC", num(res.Capex.TotalPEC)},
	})
	writeKV(&b, "OPEX", [][2]string{
		{"Labour", num(res.Opex.Labour)},
		{"Fixed", num(res.Opex.Fixed)},
		{"Variable", num(res.Opex.Variable)},
		{"Total OPEX", num(res.Opex.Total)},
	})
	writeKV(&b, "Cash flow", [][2]string{
		{"Land", num(res.CashFlow.LandCost)},
		{"Total capital investment", num(res.CashFlow.TotalCapitalInvestment)},
		{"Depreciation per year", num(res.CashFlow.Depreciation)},
		{"Total revenue", num(res.CashFlow.TotalRevenue)},
	})

	writeDCF(&b, res.DCF)
	if sweep != nil && len(sweep.Series) > 0 {
		writeSweep(&b, sweep)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## Warnings\n\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

// RenderHTML converts Markdown to HTML with table support.
func RenderHTML(md string) (string, error) {
	converter := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func writeStages(b *strings.Builder, res *pipeline.Result) {
	fmt.Fprintf(b, "| Stage | State | Detail |\n|---|---|---|\n")
	for _, s := range res.Stages {
		fmt.Fprintf(b, "| %s | %s | %s |\n", s.Stage, s.State, escape(s.Error))
	}
}

func writeKV(b *strings.Builder, title string, rows [][2]string) {
	fmt.Fprintf(b, "\n## %s\n\n| Item | Value |\n|---|---:|\n", title)
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
}

func writeDCF(b *strings.Builder, t *valuation.Table) {
	fmt.Fprintf(b, "\n## Discounted cash flow (millions)\n\n")
	b.WriteString("| " + strings.Join(valuation.Columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---:|", len(valuation.Columns)) + "\n")
	for _, r := range t.Rows {
		cells := make([]string, len(valuation.Columns))
		for i, col := range valuation.Columns {
			v, _ := r.Value(col)
			if col == valuation.ColYear {
				cells[i] = fmt.Sprintf("%d", r.Year)
				continue
			}
			cells[i] = fmt.Sprintf("%.2f", v)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

// writeSweep prints the cumulative NPV series of every grid point, ordered by grid offset.
func writeSweep(b *strings.Builder, rep *pipeline.SweepReport) {
	fmt.Fprintf(b, "\n## Sensitivity: %s\n\n", rep.Sweep.Parameter)

	points := append(rep.Sweep.Points[:0:0], rep.Sweep.Points...)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Offset < points[j].Offset })

	b.WriteString("| Year |")
	for _, p := range points {
		b.WriteString(" " + p.Label + " |")
	}
	b.WriteString("\n|---:|" + strings.Repeat("---:|", len(points)) + "\n")

	for i, y := range rep.Sweep.Years {
		fmt.Fprintf(b, "| %d |", y)
		for _, p := range points {
			if p.Err != nil || i >= len(p.Series) {
				b.WriteString(" n/a |")
				continue
			}
			fmt.Fprintf(b, " %.2f |", p.Series[i])
		}
		b.WriteString("\n")
	}

	if failed := rep.Sweep.Failed(); len(failed) > 0 {
		b.WriteString("\n")
		for _, p := range failed {
			fmt.Fprintf(b, "- %s failed: %s\n", p.Label, escape(p.Err.Error()))
		}
	}
}

func num(v float64) string { return fmt.Sprintf("%.2f", v) }

func year(y int) string {
	if y < 0 {
		return "never"
	}
	return fmt.Sprintf("%d", y)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
