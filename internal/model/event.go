package model

import "encoding/json"

// EventType names one notice in the fixed lifecycle vocabulary consumed by
// UI and notification layers.
type EventType string

const (
	EventStreamingStarted    EventType = "streaming-started"
	EventStreamingEnded      EventType = "streaming-ended"
	EventConversationCreated EventType = "conversation-created"
	EventConversationAdded   EventType = "conversation-added"
	EventSessionCreated      EventType = "session-created"
	EventClaudeResponse      EventType = "claude-response"
	EventClaudeComplete      EventType = "claude-complete"
	EventClaudeError         EventType = "claude-error"
	EventClaudeStatus        EventType = "claude-status"
	EventTokenBudget         EventType = "token-budget"
	EventAgentRunUpdated     EventType = "agent-run-updated"
)

// Event is one lifecycle notice delivered to broadcast subscribers.
// Data carries the type-specific payload; for claude-response it is the
// verbatim chunk received from the assistant, untouched.
type Event struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversationId,omitempty"`
	Data           any       `json:"data,omitempty"`
}

// StreamingPayload accompanies streaming-started / streaming-ended /
// session-created events.
type StreamingPayload struct {
	SessionID string `json:"sessionId"`
}

// ResponsePayload wraps one verbatim assistant chunk.
type ResponsePayload struct {
	Chunk json.RawMessage `json:"chunk"`
}

// CompletePayload accompanies claude-complete.
type CompletePayload struct {
	ExitCode int  `json:"exitCode"`
	Resumed  bool `json:"resumed"`
}

// ErrorPayload accompanies claude-error.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ConversationPayload accompanies conversation-created and conversation-added.
type ConversationPayload struct {
	Conversation Conversation `json:"conversation"`
}

// TokenBudgetPayload accompanies token-budget.
type TokenBudgetPayload struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

// StatusPayload accompanies claude-status progress notices.
type StatusPayload struct {
	Tokens       int64 `json:"tokens"`
	CanInterrupt bool  `json:"canInterrupt"`
}

// RunPayload accompanies agent-run-updated fan-out notices.
type RunPayload struct {
	Run AgentRun `json:"run"`
}
