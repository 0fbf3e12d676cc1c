package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adanyl0v/todo-reminders/internal/models"
)

type memoryEntry struct {
	task models.Task
	seq  uint64
}

// MemoryRepository keeps tasks in process memory. It is used by tests and
// by the memory storage driver.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]memoryEntry
	seq   uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[string]memoryEntry),
	}
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Task, error) {
	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.tasks))
	for _, e := range r.tasks {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	tasks := make([]*models.Task, len(entries))
	for i := range entries {
		task := entries[i].task
		tasks[i] = &task
	}
	return tasks, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	task := e.task
	return &task, nil
}

func (r *MemoryRepository) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.tasks[task.ID] = memoryEntry{task: *task, seq: r.seq}
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, fn UpdateFunc) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	task := e.task
	if err := fn(&task); err != nil {
		return nil, err
	}
	task.ID = id
	e.task = task
	r.tasks[id] = e
	return &task, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepository) MarkNotified(_ context.Context, id string, reminder models.Reminder, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	current, armed := e.task.Reminder()
	if !armed || current != reminder || e.task.Completed || e.task.Notified {
		return false, nil
	}
	e.task.Notified = true
	e.task.UpdatedAt = at
	r.tasks[id] = e
	return true, nil
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryRepository) Close(_ context.Context) error {
	return nil
}
