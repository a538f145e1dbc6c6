package agentrun

import (
	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/model"
)

// StartRunInput starts one role run against a task.
type StartRunInput struct {
	TaskID  string
	Role    model.RunRole
	Message string
	Options conversation.Options
}

// StartRunOutput couples the created run with the started session.
type StartRunOutput struct {
	Run            model.AgentRun `json:"run"`
	ConversationID string         `json:"conversationId"`
	SessionID      string         `json:"sessionId"`
}
