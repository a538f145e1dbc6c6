package model

import "time"

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// Project groups tasks and owns the checkout directory assistant sessions run in.
type Project struct {
	ID         string // Project identifier
	Name       string // Display name
	WorkingDir string // Absolute path to the project checkout
}

// Task represents one unit of work an assistant session can be attached to.
type Task struct {
	ID               string     // Task identifier
	ProjectID        string     // Owning project
	Title            string     // Short description
	Status           TaskStatus // Board status
	WorkflowComplete bool       // Set by business logic when the implementation↔review loop is done
	UserID           string     // User the task belongs to
	CreatedAt        time.Time  // Creation timestamp

	Project *Project // Attached on reads; nil if the project row is gone
}

// WorkingDir returns the directory sessions for this task execute in,
// or "" when no project is attached.
func (t Task) WorkingDir() string {
	if t.Project == nil {
		return ""
	}
	return t.Project.WorkingDir
}
