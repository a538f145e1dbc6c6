package claude

const (
	// DefaultBinary is the assistant CLI executable looked up on PATH.
	DefaultBinary = "claude"

	// scanBufferSize bounds a single streamed line; tool results can be large.
	scanBufferSize = 1024 * 1024
)

// Message types observed on the stream. Only these are inspected; every
// chunk is carried verbatim regardless of type.
const (
	MessageTypeSystem    = "system"
	MessageTypeAssistant = "assistant"
	MessageTypeUser      = "user"
	MessageTypeResult    = "result"
)

// Permission modes accepted by the CLI.
const (
	PermissionModeDefault     = "default"
	PermissionModeAcceptEdits = "acceptEdits"
	PermissionModePlan        = "plan"
	PermissionModeBypass      = "bypassPermissions"
)
