package model

import "time"

// RunRole tags which role an agent run executes against its task.
type RunRole string

const (
	RunRolePlanning       RunRole = "planning"
	RunRoleImplementation RunRole = "implementation"
	RunRoleReview         RunRole = "review"
)

// Complement returns the role that follows r in the implementation↔review
// loop, and whether r participates in chaining at all.
func (r RunRole) Complement() (RunRole, bool) {
	switch r {
	case RunRoleImplementation:
		return RunRoleReview, true
	case RunRoleReview:
		return RunRoleImplementation, true
	default:
		return "", false
	}
}

// RunStatus is the lifecycle state of an agent run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// AgentRun is one execution of a role against a task, linked to the
// conversation that carried it. Invariant (enforced cooperatively by the
// chaining controller and the scheduler, not by storage): at most one run
// per task is in status "running" at a time.
type AgentRun struct {
	ID             string     // Run identifier
	TaskID         string     // Task the run executes against
	Role           RunRole    // planning | implementation | review
	Status         RunStatus  // running | completed | failed
	ConversationID string     // Linked conversation ("" until created)
	Error          string     // Failure detail when Status == failed
	CreatedAt      time.Time  // When the run started
	CompletedAt    *time.Time // When the run reached a terminal status
}
