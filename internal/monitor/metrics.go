package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ticks         prometheus.Counter
	tickErrors    prometheus.Counter
	alertsFired   prometheus.Counter
	alertFailures prometheus.Counter
	armedTasks    prometheus.Gauge
	tickDuration  prometheus.Histogram
}

// NewMetrics creates the monitor collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "todo",
			Subsystem: "monitor",
			Name:      "ticks_total",
			Help:      "Number of due-task scans.",
		}),
		tickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "todo",
			Subsystem: "monitor",
			Name:      "tick_errors_total",
			Help:      "Number of storage errors during due-task scans.",
		}),
		alertsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "todo",
			Subsystem: "monitor",
			Name:      "alerts_fired_total",
			Help:      "Number of tasks moved from armed to fired.",
		}),
		alertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "todo",
			Subsystem: "monitor",
			Name:      "alert_failures_total",
			Help:      "Number of alerts whose delivery failed.",
		}),
		armedTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "todo",
			Subsystem: "monitor",
			Name:      "armed_tasks",
			Help:      "Tasks still waiting for their reminder after the last scan.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "todo",
			Subsystem: "monitor",
			Name:      "tick_duration_seconds",
			Help:      "Duration of due-task scans.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ticks,
			m.tickErrors,
			m.alertsFired,
			m.alertFailures,
			m.armedTasks,
			m.tickDuration,
		)
	}
	return m
}
