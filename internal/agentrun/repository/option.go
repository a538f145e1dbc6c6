package repository

import "ai-task-orchestrator/internal/model"

// CreateRunOptions holds the parameters for creating an agent run.
type CreateRunOptions struct {
	TaskID         string
	Role           model.RunRole
	Status         model.RunStatus // Defaults to running when empty
	ConversationID string          // Optional; linkable later
	Error          string          // Failure detail for runs created already failed
}

// ListRunsOptions filters run reads. Zero-valued fields match everything.
type ListRunsOptions struct {
	TaskID         string
	ConversationID string
	Status         model.RunStatus
}

// UpdateRunStatusOptions moves a run to a terminal status.
type UpdateRunStatusOptions struct {
	Status model.RunStatus
	Error  string // Recorded when Status is failed
}
