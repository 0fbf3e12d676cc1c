package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-reminders/internal/models"
	"github.com/adanyl0v/todo-reminders/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	repo   storage.TaskRepository
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	repo storage.TaskRepository,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidTask)
	}
	err := validateDue(params.DueDate, params.DueTime)
	if err != nil {
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := s.now().UTC()
	task := &models.Task{
		ID:        taskUUID.String(),
		Text:      text,
		DueDate:   params.DueDate,
		DueTime:   params.DueTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidTask)
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return nil, fmt.Errorf("%w: text must not be blank", ErrInvalidTask)
	}
	var dueDate, dueTime string
	if patch.DueDate != nil {
		dueDate = *patch.DueDate
	}
	if patch.DueTime != nil {
		dueTime = *patch.DueTime
	}
	err := validateDue(dueDate, dueTime)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.Update(ctx, id, func(task *models.Task) error {
		task.Apply(patch)
		task.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Bool("completed", task.Completed).
		Bool("notified", task.Notified).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug().
				Str("task_id", id).
				Msg("task already deleted")
			return nil
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) TaskStats(ctx context.Context) (*TaskStats, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}

	stats := &TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		if task.Completed {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

func validateDue(dueDate, dueTime string) error {
	if !models.ValidDate(dueDate) {
		return fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrInvalidTask)
	}
	if !models.ValidTime(dueTime) {
		return fmt.Errorf("%w: due time must be HH:MM", ErrInvalidTask)
	}
	return nil
}
