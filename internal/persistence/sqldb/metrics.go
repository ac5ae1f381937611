package sqldb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records statement latency and failures. A nil *Metrics is a no-op.
type Metrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gym",
			Subsystem: "db",
			Name:      "statement_duration_seconds",
			Help:      "Latency of database statements by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym",
			Subsystem: "db",
			Name:      "statement_failures_total",
			Help:      "Failed database statements by operation and error kind.",
		}, []string{"operation", "kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.duration, m.failures)
	}
	return m
}

func (m *Metrics) observe(operation string, started time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) fail(operation, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation, kind).Inc()
}
