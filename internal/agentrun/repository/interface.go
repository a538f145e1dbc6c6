// Package repository defines the persistence contract for agent runs.
package repository

import (
	"context"

	"ai-task-orchestrator/internal/model"
)

// RunRepository is the interface for agent-run data access operations.
type RunRepository interface {
	Create(ctx context.Context, opt CreateRunOptions) (model.AgentRun, error)
	List(ctx context.Context, opt ListRunsOptions) ([]model.AgentRun, error)
	UpdateStatus(ctx context.Context, id string, opt UpdateRunStatusOptions) (model.AgentRun, error)
	LinkConversation(ctx context.Context, id, conversationID string) error
}
