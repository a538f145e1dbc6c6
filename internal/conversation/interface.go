package conversation

import (
	"context"

	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/claude"
)

// UseCase drives streamed assistant sessions from request to terminal state.
type UseCase interface {
	// StartConversation opens a streamed session for a task. It resolves as
	// soon as the external session identifier is observed; the stream keeps
	// running in the background afterwards.
	StartConversation(ctx context.Context, sc model.Scope, input StartInput) (StartOutput, error)

	// StartAgentConversation is StartConversation with an agent owner. No
	// chaining happens when the session completes.
	StartAgentConversation(ctx context.Context, sc model.Scope, input StartAgentInput) (StartOutput, error)

	// SendMessage continues an existing session and returns only after the
	// whole stream has completed.
	SendMessage(ctx context.Context, sc model.Scope, input SendInput) error

	// AbortSession cancels a live session. Returns false for unknown ids.
	AbortSession(ctx context.Context, sessionID string) bool

	// IsSessionActive reports whether a session is tracked and active.
	IsSessionActive(sessionID string) bool

	// ActiveSessionIDs lists the identifiers of all active sessions.
	ActiveSessionIDs() []string

	// StreamingByConversation finds the live session for a conversation.
	StreamingByConversation(conversationID string) (StreamingSession, bool)

	// AllStreamingSessions lists every live streaming session with its owner.
	AllStreamingSessions() []StreamingSession
}

// Streamer starts one streamed exchange with the external generation
// service. Satisfied by *claude.Client; tests supply scripted fakes.
type Streamer interface {
	StartStream(ctx context.Context, req claude.StreamRequest) (claude.Stream, error)
}

// RunTracker is the agent-run bookkeeping invoked when a task-bound session
// terminates. Implemented by the agentrun usecase and injected via
// SetRunTracker after construction, which keeps the package dependency
// one-directional.
type RunTracker interface {
	// CompleteRunForConversation marks the running run linked to the
	// conversation completed or failed. Returns nil when no run is linked.
	CompleteRunForConversation(ctx context.Context, taskID, conversationID string, errored bool) (*model.AgentRun, error)

	// MaybeChain decides whether the finished run's complementary role
	// should start, and starts it. Never returns an error; chain failures
	// are recorded as failed runs.
	MaybeChain(ctx context.Context, sc model.Scope, run model.AgentRun)
}

// Broadcast delivers one lifecycle event to a logical owner, fire-and-forget.
type Broadcast func(ownerID string, ev model.Event)

// TaskBroadcast fans a notice out to everyone watching a task.
type TaskBroadcast func(taskID string, ev model.Event)
