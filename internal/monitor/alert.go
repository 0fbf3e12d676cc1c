package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Alert struct {
	Seq     uint64
	TaskID  string
	Text    string
	DueDate string
	DueTime string
	FiredAt time.Time
}

// Alerter delivers a fired reminder to the user. Delivery is attempted
// once; a failed alert is not sent again.
type Alerter interface {
	Alert(ctx context.Context, alert Alert) error
}

type LogAlerter struct {
	logger zerolog.Logger
}

func NewLogAlerter(logger zerolog.Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) Alert(_ context.Context, alert Alert) error {
	a.logger.Info().
		Str("task_id", alert.TaskID).
		Str("text", alert.Text).
		Str("due_date", alert.DueDate).
		Str("due_time", alert.DueTime).
		Time("fired_at", alert.FiredAt).
		Msg("task is due")
	return nil
}

// MultiAlerter hands the alert to every alerter, even if some fail.
type MultiAlerter []Alerter

func (m MultiAlerter) Alert(ctx context.Context, alert Alert) error {
	var errs []error
	for _, a := range m {
		if err := a.Alert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Feed keeps the most recent alerts in memory for clients that poll.
type Feed struct {
	mu       sync.RWMutex
	alerts   []Alert
	capacity int
	lastSeq  uint64
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{
		alerts:   make([]Alert, 0, capacity),
		capacity: capacity,
	}
}

func (f *Feed) Alert(_ context.Context, alert Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastSeq++
	alert.Seq = f.lastSeq
	if len(f.alerts) == f.capacity {
		copy(f.alerts, f.alerts[1:])
		f.alerts = f.alerts[:len(f.alerts)-1]
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

// Since returns the retained alerts with a sequence number greater than
// after, oldest first, together with the latest sequence number issued.
//
// A cursor ahead of the latest sequence number was issued by a feed from
// before a restart, so everything retained is returned.
func (f *Feed) Since(after uint64) ([]Alert, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if after > f.lastSeq {
		after = 0
	}

	out := make([]Alert, 0)
	for _, a := range f.alerts {
		if a.Seq > after {
			out = append(out, a)
		}
	}
	return out, f.lastSeq
}
