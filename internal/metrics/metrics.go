// Package metrics exposes Prometheus collectors for machine runs.
//
// Each Collector owns its registry so tests and multiple servers in one
// process never collide on the global default registerer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for turing_runs_total.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Collector records run outcomes.
type Collector struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	errors   *prometheus.CounterVec
	steps    prometheus.Histogram
	tape     prometheus.Histogram
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_runs_total",
				Help: "Total number of processed tapes by outcome",
			},
			[]string{"outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turing_run_errors_total",
				Help: "Total number of failed runs by error code",
			},
			[]string{"code"},
		),
		steps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "turing_run_steps",
				Help:    "Transitions applied per run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		tape: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "turing_tape_cells",
				Help:    "Materialized tape length at the end of a run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}
	c.registry.MustRegister(c.runs, c.errors, c.steps, c.tape)
	return c
}

// ObserveRun records one run. A non-empty code marks the run as failed.
func (c *Collector) ObserveRun(accepted bool, steps uint64, tapeLen int, code string) {
	switch {
	case code != "":
		c.runs.WithLabelValues(OutcomeError).Inc()
		c.errors.WithLabelValues(code).Inc()
	case accepted:
		c.runs.WithLabelValues(OutcomeAccepted).Inc()
	default:
		c.runs.WithLabelValues(OutcomeRejected).Inc()
	}
	c.steps.Observe(float64(steps))
	c.tape.Observe(float64(tapeLen))
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
