package main

import (
	"context"
	"testing"

	"electrolyser_tea/pkg/core/params/paramstest"
	"electrolyser_tea/pkg/core/pipeline"
)

func TestIdentitiesHoldForReferenceRun(t *testing.T) {
	for _, rate := range []float64{0, 10, 25} {
		rate := rate
		res := pipeline.NewOrchestrator(nil, pipeline.Options{}).Run(context.Background(), paramstest.Store(),
			pipeline.Overrides{DiscountRate: &rate})
		if !res.Complete {
			t.Fatalf("rate %v: run failed: %v", rate, res.Err)
		}
		if failed := runChecks(res); failed != 0 {
			t.Errorf("rate %v: %d identities failed", rate, failed)
		}
	}
}

func TestIdentitiesDetectTampering(t *testing.T) {
	res := pipeline.NewOrchestrator(nil, pipeline.Options{}).Run(context.Background(), paramstest.Store(), pipeline.Overrides{})
	res.Capex.TotalPEC += 1
	if failed := runChecks(res); failed != 1 {
		t.Errorf("expected one failed identity, got %d", failed)
	}
}
