package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

const DefaultInterval = 30 * time.Second

// Store is the part of the task store the monitor needs.
type Store interface {
	List(ctx context.Context) ([]*models.Task, error)
	MarkNotified(ctx context.Context, id string, reminder models.Reminder, at time.Time) (bool, error)
}

type Options struct {
	Interval time.Duration
	// Location the due dates and times are written in. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Monitor periodically scans the tasks and fires a single alert for every
// task whose reminder became due.
type Monitor struct {
	logger   zerolog.Logger
	store    Store
	alerter  Alerter
	metrics  *Metrics
	interval time.Duration
	location *time.Location
	now      func() time.Time
}

func New(logger zerolog.Logger, store Store, alerter Alerter, metrics *Metrics, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Monitor{
		logger:   logger,
		store:    store,
		alerter:  alerter,
		metrics:  metrics,
		interval: opts.Interval,
		location: opts.Location,
		now:      opts.Now,
	}
}

// Run ticks once right away and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info().
		Dur("interval", m.interval).
		Str("location", m.location.String()).
		Msg("started due-task monitor")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		_, _ = m.Tick(ctx)

		select {
		case <-ctx.Done():
			m.logger.Info().Msg("stopped due-task monitor")
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one scan and returns the number of tasks that fired.
//
// A task fires only if the store confirms it was still armed with the
// same reminder, so an edit racing with the scan never loses its re-arm.
// Alert delivery errors are logged and do not undo the transition.
func (m *Monitor) Tick(ctx context.Context) (int, error) {
	begin := time.Now()
	started := m.now()
	m.metrics.ticks.Inc()
	defer func() {
		m.metrics.tickDuration.Observe(time.Since(begin).Seconds())
	}()

	tasks, err := m.store.List(ctx)
	if err != nil {
		m.metrics.tickErrors.Inc()
		m.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return 0, err
	}

	armed := 0
	for _, task := range tasks {
		if StateOf(task) == Armed {
			armed++
		}
	}

	fired := 0
	for _, tr := range Evaluate(tasks, started.In(m.location)) {
		marked, err := m.store.MarkNotified(ctx, tr.TaskID, tr.Reminder, started.UTC())
		if err != nil {
			m.metrics.tickErrors.Inc()
			m.logger.Error().
				Err(err).
				Str("task_id", tr.TaskID).
				Msg("failed to mark task notified")
			continue
		}
		if !marked {
			m.logger.Debug().
				Str("task_id", tr.TaskID).
				Msg("task changed since scan")
			continue
		}

		fired++
		m.metrics.alertsFired.Inc()

		err = m.alerter.Alert(ctx, Alert{
			TaskID:  tr.TaskID,
			Text:    tr.Text,
			DueDate: tr.Reminder.Date,
			DueTime: tr.Reminder.Time,
			FiredAt: started,
		})
		if err != nil {
			m.metrics.alertFailures.Inc()
			m.logger.Warn().
				Err(err).
				Str("task_id", tr.TaskID).
				Msg("failed to deliver alert")
		}
	}

	m.metrics.armedTasks.Set(float64(armed - fired))
	if fired > 0 {
		m.logger.Info().
			Int("fired", fired).
			Int("scanned", len(tasks)).
			Msg("fired due-task alerts")
	}
	return fired, nil
}
