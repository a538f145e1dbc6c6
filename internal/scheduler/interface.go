package scheduler

import (
	"context"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/gcalendar"
)

// AgentStarter is the slice of the conversation orchestrator the scheduler
// drives. Satisfied by the conversation UseCase.
type AgentStarter interface {
	StartAgentConversation(ctx context.Context, sc model.Scope, input conversation.StartAgentInput) (conversation.StartOutput, error)

	// IsSessionActive reports whether a previously started session is
	// still streaming, used to expire stale mid-run claims.
	IsSessionActive(sessionID string) bool
}

// CalendarClient is the slice of the Google Calendar client used to mirror
// triggered runs. May be absent; mirroring is best effort.
type CalendarClient interface {
	CreateEvent(ctx context.Context, req gcalendar.CreateEventRequest) (*gcalendar.Event, error)
}
