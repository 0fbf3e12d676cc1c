package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var globalMetricsRegistry *prometheus.Registry

func InitMetrics() {
	globalMetricsRegistry = prometheus.NewRegistry()
	globalMetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalLogger.Info().Msg("initialized metrics registry")
}
