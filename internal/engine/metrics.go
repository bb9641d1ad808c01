package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hollis/gaffer/internal/model"
)

var (
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaffer_executions_total",
			Help: "Total number of executions by terminal status.",
		},
		[]string{"status"},
	)

	executionsInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gaffer_executions_inflight",
			Help: "Number of executions currently running.",
		},
	)

	executionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gaffer_execution_duration_seconds",
			Help:    "Execution run time from launch to terminal state, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(executionsTotal)
	prometheus.MustRegister(executionsInflight)
	prometheus.MustRegister(executionDuration)

	// Pre-initialize counter label combinations so they appear in /metrics
	// with value 0 from startup, rather than only after first observation.
	executionsTotal.WithLabelValues(model.StatusCompleted)
	executionsTotal.WithLabelValues(model.StatusFailed)
}
