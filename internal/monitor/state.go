package monitor

import (
	"time"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

type State int

const (
	// Disarmed tasks are completed or have no complete reminder.
	Disarmed State = iota
	// Armed tasks are incomplete, not notified and have a reminder.
	Armed
	// Fired tasks are incomplete and have already been notified.
	Fired
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	default:
		return "disarmed"
	}
}

func StateOf(task *models.Task) State {
	if task.Completed {
		return Disarmed
	}
	if task.Notified {
		return Fired
	}
	if _, ok := task.Reminder(); !ok {
		return Disarmed
	}
	return Armed
}

type Transition struct {
	TaskID   string
	Text     string
	Reminder models.Reminder
	From     State
	To       State
}

// IsDue compares the reminder with now as zero-padded strings. now must
// already be in the location the reminders are written in.
func IsDue(r models.Reminder, now time.Time) bool {
	today := now.Format(models.DateLayout)
	clock := now.Format(models.TimeLayout)
	return r.Date < today || (r.Date == today && r.Time <= clock)
}

// Evaluate returns an Armed to Fired transition for every armed task that
// is due at now. It has no side effects.
func Evaluate(tasks []*models.Task, now time.Time) []Transition {
	var transitions []Transition
	for _, task := range tasks {
		if StateOf(task) != Armed {
			continue
		}
		reminder, _ := task.Reminder()
		if !IsDue(reminder, now) {
			continue
		}
		transitions = append(transitions, Transition{
			TaskID:   task.ID,
			Text:     task.Text,
			Reminder: reminder,
			From:     Armed,
			To:       Fired,
		})
	}
	return transitions
}
