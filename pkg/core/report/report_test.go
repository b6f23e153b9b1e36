package report

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/params/paramstest"
	"electrolyser_tea/pkg/core/pipeline"
	"electrolyser_tea/pkg/core/sensitivity"
)

func render(t *testing.T, md string) *goquery.Document {
	t.Helper()
	html, err := RenderHTML(md)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestMarkdown_CompleteRun(t *testing.T) {
	o := pipeline.NewOrchestrator(nil, pipeline.Options{})
	sweep, err := o.Sweep(context.Background(), paramstest.Store(), pipeline.Overrides{}, sensitivity.DiscountRate)
	if err != nil {
		t.Fatal(err)
	}

	doc := render(t, Markdown(sweep.Base, sweep))

	var dcf *goquery.Selection
	doc.Find("h2").Each(func(_ int, h *goquery.Selection) {
		if strings.HasPrefix(h.Text(), "Discounted cash flow") {
			dcf = h.NextFiltered("table")
		}
	})
	if dcf == nil || dcf.Length() == 0 {
		t.Fatal("DCF table not rendered")
	}
	if got := dcf.Find("thead th").Length(); got != 12 {
		t.Errorf("expected 12 DCF columns, got %d", got)
	}
	if got := dcf.Find("tbody tr").Length(); got != 21 {
		t.Errorf("expected 21 DCF rows, got %d", got)
	}
	last := dcf.Find("tbody tr").Last().Find("td")
	if got := strings.TrimSpace(last.Last().Text()); got != "2.42" {
		t.Errorf("expected final cumulative NPV 2.42, got %q", got)
	}

	headers := doc.Find("th").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	joined := strings.Join(headers, ",")
	for _, label := range []string{"7.00%", "10.00%", "13.00%"} {
		if !strings.Contains(joined, label) {
			t.Errorf("sweep column %q missing from %s", label, joined)
		}
	}
}

func TestMarkdown_IncompleteRun(t *testing.T) {
	store := paramstest.Store().With(params.Electrolyser, "Current Density", 0)
	res := pipeline.NewOrchestrator(nil, pipeline.Options{}).Run(context.Background(), store, pipeline.Overrides{})

	md := Markdown(res, nil)
	if !strings.Contains(md, "Run incomplete") {
		t.Error("incomplete runs must be flagged")
	}
	if strings.Contains(md, "Discounted cash flow") {
		t.Error("incomplete runs must not render results")
	}

	doc := render(t, md)
	if got := doc.Find("table").First().Find("tbody tr").Length(); got != len(pipeline.Stages) {
		t.Errorf("expected %d stage rows, got %d", len(pipeline.Stages), got)
	}
}
