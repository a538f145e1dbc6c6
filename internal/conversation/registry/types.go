package registry

import "time"

// Status is the runtime state of a tracked session.
type Status string

const (
	StatusActive  Status = "active"
	StatusAborted Status = "aborted"
)

// Handle is the cancellation surface of a live stream.
type Handle interface {
	Interrupt() error
}

// Record is the mutable runtime state for one active external session.
// TempDir/TempFiles hold attachment scratch paths so whichever path ends the
// session can delete them.
type Record struct {
	Handle    Handle
	StartedAt time.Time
	Status    Status
	TempDir   string
	TempFiles []string
}

// Entry maps an external session back to its logical owner. Exactly one of
// TaskID/AgentID is set.
type Entry struct {
	TaskID         string
	AgentID        string
	ConversationID string
}

// OwnerID returns the task or agent the session belongs to.
func (e Entry) OwnerID() string {
	if e.TaskID != "" {
		return e.TaskID
	}
	return e.AgentID
}
