package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTask        = errors.New("invalid task")
)

type AuthService interface {
	// Login checks the credentials against the identity store and issues
	// a signed access token bound to the username.
	//
	// It returns ErrInvalidCredentials if the username is unknown or the
	// password doesn't match, without telling which one it was.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// ParseJWTToken verifies the signature, issuer and expiry of the given
	// token and returns its registered claims.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type IdentityStore interface {
	// Verify reports whether the username exists and the password matches.
	Verify(ctx context.Context, username, password string) (bool, error)
}

type TaskService interface {
	// ListTasks returns all tasks, newest first.
	ListTasks(ctx context.Context) ([]*models.Task, error)

	// CreateTask validates and stores a new incomplete, not yet notified task.
	//
	// It returns ErrInvalidTask if the text is blank or the due date/time
	// are not in YYYY-MM-DD / HH:MM form.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask merges the patch into the stored task, re-arming its
	// reminder when the due date/time change or it is marked incomplete.
	//
	// It returns ErrTaskNotFound for unknown ids and ErrInvalidTask
	// for empty patches or ones that fail validation.
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	// DeleteTask removes the task. Deleting an unknown id is not an error.
	DeleteTask(ctx context.Context, id string) error

	// TaskStats counts tasks by completion state.
	TaskStats(ctx context.Context) (*TaskStats, error)
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResult struct {
	Username             string
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

type CreateTaskParams struct {
	Text    string
	DueDate string
	DueTime string
}

type TaskStats struct {
	Total     int
	Completed int
	Pending   int
}
