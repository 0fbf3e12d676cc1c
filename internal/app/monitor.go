package app

import (
	"context"
	"time"

	"github.com/adanyl0v/todo-reminders/internal/config"
	"github.com/adanyl0v/todo-reminders/internal/monitor"
)

var (
	globalAlertFeed   *monitor.Feed
	stopMonitor       context.CancelFunc
	monitorTerminated chan struct{}
)

func MustStartMonitor() {
	cfg := config.Global()

	location, err := time.LoadLocation(cfg.Monitor.Timezone)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("timezone", cfg.Monitor.Timezone).
			Msg("failed to load monitor timezone")
		panic(err)
	}

	logger := componentLogger("monitor")

	globalAlertFeed = monitor.NewFeed(cfg.Alerts.FeedCapacity)
	m := monitor.New(
		logger,
		globalTaskRepository,
		monitor.MultiAlerter{monitor.NewLogAlerter(logger), globalAlertFeed},
		monitor.NewMetrics(globalMetricsRegistry),
		monitor.Options{
			Interval: cfg.Monitor.Interval,
			Location: location,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	stopMonitor = cancel
	monitorTerminated = make(chan struct{})
	go func() {
		defer close(monitorTerminated)
		m.Run(ctx)
	}()
}

func StopMonitor() {
	stopMonitor()
	<-monitorTerminated
}
