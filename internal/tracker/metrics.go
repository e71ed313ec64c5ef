// ABOUTME: Prometheus collectors for the write-behind rep queue.
// ABOUTME: Counts queued, persisted and failed writes plus the pending gauge.
package tracker

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts write-behind traffic. One Metrics value is shared by every
// manager of a process.
type Metrics struct {
	enqueued  prometheus.Counter
	persisted prometheus.Counter
	failed    prometheus.Counter
	pending   prometheus.Gauge
}

// NewMetrics builds the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reps",
			Subsystem: "writebehind",
			Name:      "enqueued_total",
			Help:      "Number of rep count writes queued for persistence.",
		}),
		persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reps",
			Subsystem: "writebehind",
			Name:      "persisted_total",
			Help:      "Number of queued rep count writes the store acknowledged.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reps",
			Subsystem: "writebehind",
			Name:      "failed_total",
			Help:      "Number of queued rep count writes the store rejected.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reps",
			Subsystem: "writebehind",
			Name:      "pending",
			Help:      "Rep count writes queued or in flight.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.enqueued, m.persisted, m.failed, m.pending)
	}
	return m
}
