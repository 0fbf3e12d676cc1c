package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

// testRepository runs the behaviour every TaskRepository must share.
func testRepository(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

		a := newTestTask(t, "A", base)
		b := newTestTask(t, "B", base.Add(time.Second))
		c := newTestTask(t, "C", base.Add(2*time.Second))
		for _, task := range []*models.Task{a, b, c} {
			require.NoError(t, repo.Create(ctx, task))
		}

		tasks, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, []string{"C", "B", "A"}, texts(tasks))
	})

	t.Run("ListEmpty", func(t *testing.T) {
		repo := newRepo(t)

		tasks, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("GetRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task := newTestTask(t, "water plants", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
		task.DueDate = "2024-03-05"
		task.DueTime = "09:30"
		require.NoError(t, repo.Create(ctx, task))

		got, err := repo.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, "water plants", got.Text)
		assert.Equal(t, "2024-03-05", got.DueDate)
		assert.Equal(t, "09:30", got.DueTime)
		assert.False(t, got.Completed)
		assert.False(t, got.Notified)
		assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("GetUnknown", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Get(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = repo.Get(context.Background(), "not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task := newTestTask(t, "draft", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Create(ctx, task))

		updated, err := repo.Update(ctx, task.ID, func(task *models.Task) error {
			task.Text = "final"
			task.Completed = true
			task.DueDate = "2024-04-01"
			task.UpdatedAt = task.UpdatedAt.Add(time.Minute)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Text)

		got, err := repo.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Text)
		assert.True(t, got.Completed)
		assert.Equal(t, "2024-04-01", got.DueDate)
		assert.Empty(t, got.DueTime)

		updated, err = repo.Update(ctx, task.ID, func(task *models.Task) error {
			task.DueDate = ""
			task.UpdatedAt = task.UpdatedAt.Add(time.Minute)
			return nil
		})
		require.NoError(t, err)
		assert.Empty(t, updated.DueDate)
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		repo := newRepo(t)

		called := false
		_, err := repo.Update(context.Background(), uuid.NewString(), func(*models.Task) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, called)
	})

	t.Run("UpdateAbortedByCallback", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task := newTestTask(t, "keep", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Create(ctx, task))

		errStop := assert.AnError
		_, err := repo.Update(ctx, task.ID, func(task *models.Task) error {
			task.Text = "changed"
			return errStop
		})
		assert.ErrorIs(t, err, errStop)

		got, err := repo.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "keep", got.Text)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task := newTestTask(t, "gone", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Create(ctx, task))

		require.NoError(t, repo.Delete(ctx, task.ID))
		assert.ErrorIs(t, repo.Delete(ctx, task.ID), ErrNotFound)

		_, err := repo.Get(ctx, task.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("MarkNotified", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

		task := newTestTask(t, "standup", at.Add(-time.Hour))
		task.DueDate = "2024-01-01"
		task.DueTime = "09:00"
		require.NoError(t, repo.Create(ctx, task))
		reminder, _ := task.Reminder()

		stale := models.Reminder{Date: "2024-01-01", Time: "08:00"}
		marked, err := repo.MarkNotified(ctx, task.ID, stale, at)
		require.NoError(t, err)
		assert.False(t, marked)

		marked, err = repo.MarkNotified(ctx, task.ID, reminder, at)
		require.NoError(t, err)
		assert.True(t, marked)

		marked, err = repo.MarkNotified(ctx, task.ID, reminder, at.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, marked)

		got, err := repo.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Notified)
	})

	t.Run("MarkNotifiedSkipsCompleted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

		task := newTestTask(t, "done already", at.Add(-time.Hour))
		task.DueDate = "2024-01-01"
		task.DueTime = "09:00"
		task.Completed = true
		require.NoError(t, repo.Create(ctx, task))
		reminder, _ := task.Reminder()

		marked, err := repo.MarkNotified(ctx, task.ID, reminder, at)
		require.NoError(t, err)
		assert.False(t, marked)

		marked, err = repo.MarkNotified(ctx, uuid.NewString(), reminder, at)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("Ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}

func newTestTask(t *testing.T, text string, createdAt time.Time) *models.Task {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.Task{
		ID:        id.String(),
		Text:      text,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func texts(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Text
	}
	return out
}
