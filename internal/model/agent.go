package model

import "time"

// Agent is a reusable assistant persona that can be triggered manually
// or by its cron schedule.
type Agent struct {
	ID           string     // Agent identifier
	Name         string     // Display name
	UserID       string     // Owning user
	WorkingDir   string     // Directory the agent's sessions execute in
	SystemPrompt string     // Optional custom system prompt
	CreatedAt    time.Time  // Creation timestamp

	// Cron schedule, five-field expressions at minute granularity.
	ScheduleEnabled bool       // Whether the scheduler should pick this agent up
	CronExpr        string     // Five-field cron expression
	CronPrompt      string     // Prompt sent on each scheduled run
	LastRunAt       *time.Time // When the scheduler last triggered this agent
	NextRunAt       *time.Time // Next due time, recomputed after every run
}
