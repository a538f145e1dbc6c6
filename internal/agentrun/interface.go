package agentrun

import (
	"context"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/model"
)

// UseCase defines the business logic interface for agent runs: the
// task-run-start path and the bookkeeping invoked when a task-bound
// session terminates.
type UseCase interface {
	// StartRun creates a run for a role against a task, creates the
	// conversation carrying it, and starts the streamed session.
	StartRun(ctx context.Context, sc model.Scope, input StartRunInput) (StartRunOutput, error)

	// CompleteRunForConversation marks the running run linked to the
	// conversation completed or failed. Returns nil when no run is linked.
	CompleteRunForConversation(ctx context.Context, taskID, conversationID string, errored bool) (*model.AgentRun, error)

	// MaybeChain decides whether the finished run's complementary role
	// should start, and starts it. Chain failures are recorded as failed
	// runs rather than returned.
	MaybeChain(ctx context.Context, sc model.Scope, run model.AgentRun)
}

// ConversationStarter is the slice of the conversation orchestrator the
// run controller drives. Satisfied by the conversation UseCase.
type ConversationStarter interface {
	StartConversation(ctx context.Context, sc model.Scope, input conversation.StartInput) (conversation.StartOutput, error)
}
