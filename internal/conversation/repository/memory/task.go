package memory

import (
	"context"
	"sync"

	"ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
)

// TaskStore is an in-memory repository.TaskRepository. Rows are seeded by
// whatever hosts the orchestrator; the CRUD surface is not part of this
// service.
type TaskStore struct {
	mu    sync.RWMutex
	items map[string]model.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{items: make(map[string]model.Task)}
}

// Save inserts or replaces a task row.
func (s *TaskStore) Save(ctx context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[t.ID] = t
	return nil
}

func (s *TaskStore) Detail(ctx context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[id]
	if !ok {
		return model.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (s *TaskStore) UpdateStatus(ctx context.Context, id string, status model.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	s.items[id] = t
	return nil
}
