package repository

// CreateConversationOptions holds the parameters for creating a conversation.
// Exactly one of TaskID/AgentID must be set.
type CreateConversationOptions struct {
	TaskID  string
	AgentID string
}
