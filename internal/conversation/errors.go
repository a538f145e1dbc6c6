package conversation

import "errors"

// Domain-specific errors for the conversation package.
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoWorkingDir         = errors.New("no working directory configured")
	ErrNoSessionYet         = errors.New("conversation has no session yet")
	ErrNoSessionID          = errors.New("stream ended without a session id")
	ErrSessionReadyTimeout  = errors.New("timed out waiting for session id")
)
