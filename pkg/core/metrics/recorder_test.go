package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Observe(ctx, "run", true, 2*time.Millisecond)
	r.Observe(ctx, "run", false, time.Millisecond)
	r.Observe(ctx, "run", true, time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(r.results.WithLabelValues("run", "success")); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(r.results.WithLabelValues("run", "error")); got != 1 {
		t.Errorf("expected 1 error, got %v", got)
	}
	if got := testutil.CollectAndCount(r.durations); got != 1 {
		t.Errorf("expected one duration series, got %d", got)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Observe(context.Background(), "stage.dcf", true, time.Microsecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`tea_operation_results_total{operation="stage.dcf",status="success"} 1`,
		"tea_operation_duration_seconds_bucket",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
