package agentrun

import "errors"

var (
	// ErrInvalidRole is returned when a run is requested for a role
	// outside the known set.
	ErrInvalidRole = errors.New("invalid run role")

	// ErrRunInProgress is returned when a run is requested for a task
	// that already has a running run.
	ErrRunInProgress = errors.New("task already has a running agent run")
)
