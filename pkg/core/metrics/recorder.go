// Package metrics exports pipeline timings and outcomes to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder aggregates operation durations and success/error counts. It satisfies
// pipeline.MetricsRecorder.
type Recorder struct {
	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewRecorder registers the TEA collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tea",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pipeline stages, runs and sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tea",
			Name:      "operation_results_total",
			Help:      "Pipeline operation outcomes by status.",
		}, []string{"operation", "status"}),
	}
	r.registry.MustRegister(r.durations, r.results)
	return r
}

// Observe records one operation outcome.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
