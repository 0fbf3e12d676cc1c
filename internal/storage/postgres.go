package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

type PostgresRepository struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgresRepository(logger zerolog.Logger, pgPool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgPool: pgPool,
	}
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	return applyMigrations(ctx, DriverPostgres, func(ctx context.Context, query string) error {
		_, err := r.pgPool.Exec(ctx, query)
		return err
	})
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id,
       text,
       completed,
       due_date,
       due_time,
       notified,
       created_at,
       updated_at
FROM todos
ORDER BY created_at DESC, id DESC
`
	rows, err := r.pgPool.Query(ctx, selectTasksQuery)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanPostgresTask(rows)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	r.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id,
       text,
       completed,
       due_date,
       due_time,
       notified,
       created_at,
       updated_at
FROM todos
WHERE id = $1
`
	if !isPostgresID(id) {
		return nil, ErrNotFound
	}
	task, err := scanPostgresTask(r.pgPool.QueryRow(ctx, selectTaskByIDQuery, id))
	if err != nil {
		if isPostgresNotFound(err) {
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

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO todos (id,
                   text,
                   completed,
                   due_date,
                   due_time,
                   notified,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.Text,
		task.Completed,
		nullIfEmpty(task.DueDate),
		nullIfEmpty(task.DueTime),
		task.Notified,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	r.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Task, error) {
	if !isPostgresID(id) {
		return nil, ErrNotFound
	}
	tx, err := r.pgPool.Begin(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const selectTaskForUpdateQuery = `
SELECT id,
       text,
       completed,
       due_date,
       due_time,
       notified,
       created_at,
       updated_at
FROM todos
WHERE id = $1
FOR UPDATE
`
	task, err := scanPostgresTask(tx.QueryRow(ctx, selectTaskForUpdateQuery, id))
	if err != nil {
		if isPostgresNotFound(err) {
			return nil, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task for update")
		return nil, err
	}

	err = fn(task)
	if err != nil {
		return nil, err
	}

	const updateTaskQuery = `
UPDATE todos
SET text = $1,
    completed = $2,
    due_date = $3,
    due_time = $4,
    notified = $5,
    updated_at = $6
WHERE id = $7
`
	_, err = tx.Exec(
		ctx,
		updateTaskQuery,
		task.Text,
		task.Completed,
		nullIfEmpty(task.DueDate),
		nullIfEmpty(task.DueTime),
		task.Notified,
		task.UpdatedAt,
		id,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("updated task")
	return task, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM todos
WHERE id = $1
`
	if !isPostgresID(id) {
		return ErrNotFound
	}
	tag, err := r.pgPool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		if isPostgresNotFound(err) {
			return ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (r *PostgresRepository) MarkNotified(ctx context.Context, id string, reminder models.Reminder, at time.Time) (bool, error) {
	const markNotifiedQuery = `
UPDATE todos
SET notified = TRUE,
    updated_at = $4
WHERE id = $1 AND
      due_date = $2 AND
      due_time = $3 AND
      completed = FALSE AND
      notified = FALSE
`
	if !isPostgresID(id) {
		return false, nil
	}
	tag, err := r.pgPool.Exec(
		ctx,
		markNotifiedQuery,
		id,
		reminder.Date,
		reminder.Time,
		at,
	)
	if err != nil {
		if isPostgresNotFound(err) {
			return false, nil
		}
		r.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to mark task notified")
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pgPool.Ping(ctx)
}

func (r *PostgresRepository) Close(_ context.Context) error {
	r.pgPool.Close()
	return nil
}

func scanPostgresTask(row pgx.Row) (*models.Task, error) {
	var (
		task             models.Task
		dueDate, dueTime *string
	)
	err := row.Scan(
		&task.ID,
		&task.Text,
		&task.Completed,
		&dueDate,
		&dueTime,
		&task.Notified,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.DueDate = derefString(dueDate)
	task.DueTime = derefString(dueTime)
	return &task, nil
}

// isPostgresID reports whether id can be bound to the uuid primary key.
// Anything else can never match a row.
func isPostgresID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isPostgresNotFound also covers invalid uuid text rejected by the server,
// which happens when ids are sent over the simple protocol.
func isPostgresNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.InvalidTextRepresentation
	}
	return false
}
