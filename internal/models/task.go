package models

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Task struct {
	ID        string
	Text      string
	Completed bool
	DueDate   string
	DueTime   string
	Notified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reminder is the point in time a task is due at. It only exists when both
// the date and the time of day are set.
type Reminder struct {
	Date string
	Time string
}

func (t *Task) Reminder() (Reminder, bool) {
	if t.DueDate == "" || t.DueTime == "" {
		return Reminder{}, false
	}
	return Reminder{Date: t.DueDate, Time: t.DueTime}, true
}

// TaskPatch holds the client-editable fields of a partial update. Nil
// fields are left untouched. Notified is owned by the due-task monitor and
// can't be patched.
type TaskPatch struct {
	Text      *string
	Completed *bool
	DueDate   *string
	DueTime   *string
}

func (p TaskPatch) Empty() bool {
	return p.Text == nil &&
		p.Completed == nil &&
		p.DueDate == nil &&
		p.DueTime == nil
}

// Apply merges the patch into the task.
//
// Touching the due date or time re-arms the reminder, and so does
// moving a completed task back to incomplete.
func (t *Task) Apply(p TaskPatch) {
	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}

	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.DueTime != nil {
		t.DueTime = *p.DueTime
	}
	if p.DueDate != nil || p.DueTime != nil {
		t.Notified = false
	}

	if p.Completed != nil {
		if t.Completed && !*p.Completed {
			t.Notified = false
		}
		t.Completed = *p.Completed
	}
}

// ValidDate reports whether s is empty or a zero-padded YYYY-MM-DD date.
func ValidDate(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is empty or a zero-padded 24h HH:MM time.
func ValidTime(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}
