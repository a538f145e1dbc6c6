package model

import "time"

// Conversation pairs a task or an agent with one external assistant session.
// Exactly one of TaskID/AgentID is set. SessionID stays empty until the first
// streamed chunk reveals it and is immutable afterwards: continuing work in a
// fresh external session means creating a new conversation.
type Conversation struct {
	ID        string    // Conversation identifier
	TaskID    string    // Owning task, if task-bound
	AgentID   string    // Owning agent, if agent-bound
	SessionID string    // External session identifier ("" until known)
	CreatedAt time.Time // Creation timestamp
}

// OwnerID returns the logical owner the conversation's events are addressed to.
func (c Conversation) OwnerID() string {
	if c.TaskID != "" {
		return c.TaskID
	}
	return c.AgentID
}
