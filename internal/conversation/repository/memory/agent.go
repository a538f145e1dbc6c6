package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
)

// AgentStore is an in-memory repository.AgentRepository.
type AgentStore struct {
	mu    sync.RWMutex
	items map[string]model.Agent
}

func NewAgentStore() *AgentStore {
	return &AgentStore{items: make(map[string]model.Agent)}
}

// Save inserts or replaces an agent row.
func (s *AgentStore) Save(ctx context.Context, a model.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[a.ID] = a
	return nil
}

func (s *AgentStore) Detail(ctx context.Context, id string) (model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.items[id]
	if !ok {
		return model.Agent{}, repository.ErrNotFound
	}
	return a, nil
}

func (s *AgentStore) Due(ctx context.Context, now time.Time) ([]model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []model.Agent
	for _, a := range s.items {
		if a.ScheduleEnabled && a.NextRunAt != nil && !a.NextRunAt.After(now) {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (s *AgentStore) UpdateRunTimes(ctx context.Context, id string, lastRunAt time.Time, nextRunAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastRunAt = &lastRunAt
	a.NextRunAt = nextRunAt
	s.items[id] = a
	return nil
}

func (s *AgentStore) UpdateScheduleEnabled(ctx context.Context, id string, enabled bool, nextRunAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ScheduleEnabled = enabled
	a.NextRunAt = nextRunAt
	s.items[id] = a
	return nil
}
