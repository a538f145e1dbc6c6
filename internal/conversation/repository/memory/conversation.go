package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
)

// ConversationStore is an in-memory repository.ConversationRepository.
type ConversationStore struct {
	mu    sync.RWMutex
	items map[string]model.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{items: make(map[string]model.Conversation)}
}

func (s *ConversationStore) Create(ctx context.Context, opt repository.CreateConversationOptions) (model.Conversation, error) {
	if (opt.TaskID == "") == (opt.AgentID == "") {
		return model.Conversation{}, fmt.Errorf("conversation needs exactly one owner, got task=%q agent=%q", opt.TaskID, opt.AgentID)
	}

	c := model.Conversation{
		ID:        uuid.NewString(),
		TaskID:    opt.TaskID,
		AgentID:   opt.AgentID,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = c
	return c, nil
}

func (s *ConversationStore) Detail(ctx context.Context, id string) (model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.items[id]
	if !ok {
		return model.Conversation{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *ConversationStore) UpdateSessionID(ctx context.Context, id, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.SessionID != "" && c.SessionID != sessionID {
		return fmt.Errorf("conversation %s already bound to session %s", id, c.SessionID)
	}
	c.SessionID = sessionID
	s.items[id] = c
	return nil
}

func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
