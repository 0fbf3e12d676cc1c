package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// UpdateFunc mutates the current state of a task inside Update.
// Returning an error aborts the update and is passed through unchanged.
type UpdateFunc func(task *models.Task) error

type TaskRepository interface {
	// List returns every task, newest created first.
	List(ctx context.Context) ([]*models.Task, error)

	// Get returns ErrNotFound if there is no task with the given id.
	Get(ctx context.Context, id string) (*models.Task, error)

	// Create inserts a task whose ID and timestamps are already set.
	Create(ctx context.Context, task *models.Task) error

	// Update loads the task, applies fn and writes the result back.
	// It returns ErrNotFound if there is no task with the given id.
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Task, error)

	// Delete returns ErrNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error

	// MarkNotified sets notified=true only while the task is still
	// incomplete, not yet notified and due at exactly the given reminder.
	// It reports whether the flag was flipped by this call.
	MarkNotified(ctx context.Context, id string, reminder models.Reminder, at time.Time) (bool, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
