package conversation

// Options is the caller-supplied lifecycle context shared by the start and
// send operations.
type Options struct {
	ConversationID string       // Reuse this conversation record instead of creating one
	PermissionMode string       // Assistant permission mode; "" uses the configured default
	SystemPrompt   string       // Appended system prompt
	Attachments    []Attachment // Decoded to temp files before the request

	Broadcast     Broadcast     // Overrides the wired point-to-point broadcaster
	TaskBroadcast TaskBroadcast // Overrides the wired task-wide broadcaster
}

// Attachment is one file shipped alongside a message. It is written to a
// per-exchange temp directory; occurrences of "[attachment:<Name>]" in the
// message are rewritten to the file's absolute path, and attachments never
// referenced are appended as a trailing file list.
type Attachment struct {
	Name string
	Data []byte
}

// StartInput starts a task-bound conversation.
type StartInput struct {
	TaskID  string
	Message string
	Options Options
}

// StartAgentInput starts an agent-bound conversation.
type StartAgentInput struct {
	AgentID string
	Message string
	Options Options
}

// StartOutput is returned once the session identifier is known.
type StartOutput struct {
	ConversationID string `json:"conversationId"`
	SessionID      string `json:"sessionId"`
}

// SendInput continues an existing conversation.
type SendInput struct {
	ConversationID string
	Message        string
	Options        Options
}

// StreamingSession is the read model for one live session.
type StreamingSession struct {
	SessionID      string `json:"sessionId"`
	TaskID         string `json:"taskId,omitempty"`
	AgentID        string `json:"agentId,omitempty"`
	ConversationID string `json:"conversationId"`
}
