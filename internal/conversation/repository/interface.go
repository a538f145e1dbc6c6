package repository

import (
	"context"
	"time"

	"ai-task-orchestrator/internal/model"
)

// ConversationRepository is the persistence contract for conversation records.
type ConversationRepository interface {
	Create(ctx context.Context, opt CreateConversationOptions) (model.Conversation, error)
	Detail(ctx context.Context, id string) (model.Conversation, error)
	// UpdateSessionID persists the external session identifier once it is
	// known. The identifier is write-once per conversation.
	UpdateSessionID(ctx context.Context, id, sessionID string) error
	Delete(ctx context.Context, id string) error
}

// TaskRepository reads tasks (with their project attached) and moves their
// board status.
type TaskRepository interface {
	Detail(ctx context.Context, id string) (model.Task, error)
	UpdateStatus(ctx context.Context, id string, status model.TaskStatus) error
}

// AgentRepository reads agents and keeps their schedule bookkeeping.
type AgentRepository interface {
	Detail(ctx context.Context, id string) (model.Agent, error)
	// Due lists enabled agents whose next-run time is at or before now.
	Due(ctx context.Context, now time.Time) ([]model.Agent, error)
	// UpdateRunTimes records a triggered run and the recomputed next due time.
	UpdateRunTimes(ctx context.Context, id string, lastRunAt time.Time, nextRunAt *time.Time) error
	// UpdateScheduleEnabled flips the schedule flag, clearing or setting the
	// next due time to match.
	UpdateScheduleEnabled(ctx context.Context, id string, enabled bool, nextRunAt *time.Time) error
}
