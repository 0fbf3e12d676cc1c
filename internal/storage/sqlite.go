package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

// Fixed width so that created_at sorts lexically in time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	logger zerolog.Logger
	db     *sql.DB
}

// OpenSQLite opens the database file at path (":memory:" is allowed) and
// applies the schema. A single connection is used, so writes are serialized.
func OpenSQLite(ctx context.Context, logger zerolog.Logger, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &SQLiteRepository{
		logger: logger,
		db:     db,
	}

	_, err = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	err = applyMigrations(ctx, DriverSQLite, func(ctx context.Context, query string) error {
		_, err := db.ExecContext(ctx, query)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id, text, completed, due_date, due_time, notified, created_at, updated_at
FROM todos
ORDER BY created_at DESC, id DESC
`
	rows, err := r.db.QueryContext(ctx, selectTasksQuery)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanSQLiteTask(rows)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	return r.get(ctx, r.db, id)
}

type sqliteQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepository) get(ctx context.Context, q sqliteQuerier, id string) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id, text, completed, due_date, due_time, notified, created_at, updated_at
FROM todos
WHERE id = ?
`
	task, err := scanSQLiteTask(q.QueryRowContext(ctx, selectTaskByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO todos (id, text, completed, due_date, due_time, notified, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`
	_, err := r.db.ExecContext(
		ctx,
		insertTaskQuery,
		task.ID,
		task.Text,
		task.Completed,
		sqliteNullString(task.DueDate),
		sqliteNullString(task.DueTime),
		task.Notified,
		formatSQLiteTime(task.CreatedAt),
		formatSQLiteTime(task.UpdatedAt),
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	task, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	err = fn(task)
	if err != nil {
		return nil, err
	}

	const updateTaskQuery = `
UPDATE todos
SET text = ?, completed = ?, due_date = ?, due_time = ?, notified = ?, updated_at = ?
WHERE id = ?
`
	_, err = tx.ExecContext(
		ctx,
		updateTaskQuery,
		task.Text,
		task.Completed,
		sqliteNullString(task.DueDate),
		sqliteNullString(task.DueTime),
		task.Notified,
		formatSQLiteTime(task.UpdatedAt),
		id,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}
	return task, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkNotified(ctx context.Context, id string, reminder models.Reminder, at time.Time) (bool, error) {
	const markNotifiedQuery = `
UPDATE todos
SET notified = 1, updated_at = ?
WHERE id = ? AND due_date = ? AND due_time = ? AND completed = 0 AND notified = 0
`
	res, err := r.db.ExecContext(
		ctx,
		markNotifiedQuery,
		formatSQLiteTime(at),
		id,
		reminder.Date,
		reminder.Time,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to mark task notified")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close(_ context.Context) error {
	return r.db.Close()
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row sqliteScanner) (*models.Task, error) {
	var (
		task                 models.Task
		dueDate, dueTime     sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&task.ID,
		&task.Text,
		&task.Completed,
		&dueDate,
		&dueTime,
		&task.Notified,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.DueDate = dueDate.String
	task.DueTime = dueTime.String

	task.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	task.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &task, nil
}

func sqliteNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
