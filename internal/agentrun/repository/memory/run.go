// Package memory provides the in-memory reference implementation of the
// agent-run repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-task-orchestrator/internal/agentrun/repository"
	"ai-task-orchestrator/internal/model"
)

// RunStore is an in-memory repository.RunRepository.
type RunStore struct {
	mu    sync.RWMutex
	items map[string]model.AgentRun
}

func NewRunStore() *RunStore {
	return &RunStore{items: make(map[string]model.AgentRun)}
}

func (s *RunStore) Create(ctx context.Context, opt repository.CreateRunOptions) (model.AgentRun, error) {
	status := opt.Status
	if status == "" {
		status = model.RunStatusRunning
	}

	r := model.AgentRun{
		ID:             uuid.NewString(),
		TaskID:         opt.TaskID,
		Role:           opt.Role,
		Status:         status,
		ConversationID: opt.ConversationID,
		Error:          opt.Error,
		CreatedAt:      time.Now(),
	}
	if status != model.RunStatusRunning {
		now := r.CreatedAt
		r.CompletedAt = &now
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = r
	return r, nil
}

func (s *RunStore) List(ctx context.Context, opt repository.ListRunsOptions) ([]model.AgentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AgentRun, 0)
	for _, r := range s.items {
		if opt.TaskID != "" && r.TaskID != opt.TaskID {
			continue
		}
		if opt.ConversationID != "" && r.ConversationID != opt.ConversationID {
			continue
		}
		if opt.Status != "" && r.Status != opt.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *RunStore) UpdateStatus(ctx context.Context, id string, opt repository.UpdateRunStatusOptions) (model.AgentRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return model.AgentRun{}, repository.ErrNotFound
	}
	r.Status = opt.Status
	r.Error = opt.Error
	if opt.Status != model.RunStatusRunning {
		now := time.Now()
		r.CompletedAt = &now
	}
	s.items[id] = r
	return r, nil
}

func (s *RunStore) LinkConversation(ctx context.Context, id, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.ConversationID = conversationID
	s.items[id] = r
	return nil
}
