package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"retrace/internal/engine"
)

// metrics carries the server's collectors on a private registry, so two
// servers in one process never fight over registration.
type metrics struct {
	reg      *prometheus.Registry
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrace_runs_total",
				Help: "Total runs served, by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "retrace_run_duration_seconds",
				Help: "Wall-clock duration of run evaluations.",
			},
		),
	}
	m.reg.MustRegister(m.runs, m.duration)
	return m
}

func (m *metrics) observeRun(outcome engine.RunOutcome, d time.Duration) {
	m.runs.WithLabelValues(outcome.String()).Inc()
	m.duration.Observe(d.Seconds())
}
