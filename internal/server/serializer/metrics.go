package serializer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCommitted   = "committed"
	outcomeNoop        = "noop"
	outcomeError       = "error"
	outcomeCommitError = "commit_error"
	outcomeCanceled    = "canceled"
	outcomeRejected    = "rejected"
)

type metrics struct {
	depth         prometheus.Gauge
	operations    *prometheus.CounterVec
	commitSeconds prometheus.Histogram
}

// newMetrics builds the collectors; a nil reg leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		depth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fishtank",
			Subsystem: "serializer",
			Name:      "queue_depth",
			Help:      "Operations waiting for the mutation serializer.",
		}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fishtank",
			Subsystem: "serializer",
			Name:      "operations_total",
			Help:      "Operations handled by the mutation serializer by name and outcome.",
		}, []string{"operation", "outcome"}),
		commitSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fishtank",
			Subsystem: "serializer",
			Name:      "commit_duration_seconds",
			Help:      "Time spent persisting a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}

func (m *metrics) observe(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}
