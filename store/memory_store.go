package store

import (
	"context"
	"sync"
	"time"

	"github.com/cygel-ai/planetary/types"
)

// MemoryStore is the in-memory TaskStore. Records are kept as private
// copies; reads hand out clones.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[string]*types.Task
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*types.Task)}
}

// SaveTask persists a task record.
func (s *MemoryStore) SaveTask(ctx context.Context, task *types.Task) error {
	if task == nil || task.ID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	cp := task.Clone()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	s.tasks[cp.ID] = cp
	return nil
}

// GetTask retrieves a task by ID.
func (s *MemoryStore) GetTask(ctx context.Context, taskID string) (*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	return task.Clone(), nil
}

// UpdateTask applies mutate to the stored record under the store lock.
func (s *MemoryStore) UpdateTask(ctx context.Context, taskID string, mutate func(*types.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	task, ok := s.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	if err := mutate(task); err != nil {
		return err
	}
	task.UpdatedAt = time.Now()
	return nil
}

// ListTasks retrieves tasks matching the filter.
func (s *MemoryStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	result := make([]*types.Task, 0)
	for _, task := range s.tasks {
		if filter.Matches(task) {
			result = append(result, task.Clone())
		}
	}
	return result, nil
}

// Stats returns per-status counts.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	stats := &Stats{StatusCounts: make(map[types.TaskStatus]int64)}
	for _, task := range s.tasks {
		stats.Total++
		stats.StatusCounts[task.Status]++
		if task.Status.IsCompleted() {
			stats.CompletedTasks++
		}
	}
	return stats, nil
}

// Ping checks store health.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ TaskStore = (*MemoryStore)(nil)
