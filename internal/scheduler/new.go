package scheduler

import (
	"context"
	"sync"
	"time"

	"ai-task-orchestrator/internal/conversation/repository"
	pkgLog "ai-task-orchestrator/pkg/log"
)

// Config carries the scheduler's tunables.
type Config struct {
	// TickInterval is the polling cadence. Schedules are minute-grained,
	// so the default is one minute.
	TickInterval time.Duration
	// CalendarID names the calendar mirror events are created in.
	CalendarID string
	// Timezone names the zone calendar mirror events are created in.
	Timezone string
}

func (c *Config) setDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Minute
	}
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
}

// Scheduler polls for due agents and triggers their scheduled runs. One
// instance per process; Start and Stop are idempotent.
type Scheduler struct {
	l         pkgLog.Logger
	cfg       Config
	agentRepo repository.AgentRepository
	starter   AgentStarter
	calendar  CalendarClient

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	// running maps a claimed agent id to its live session id ("" while
	// the start call is still in flight).
	running map[string]string
}

// New creates the scheduler. calendar may be nil; mirroring is skipped then.
func New(
	l pkgLog.Logger,
	cfg Config,
	agentRepo repository.AgentRepository,
	starter AgentStarter,
	calendar CalendarClient,
) *Scheduler {
	cfg.setDefaults()
	return &Scheduler{
		l:         l,
		cfg:       cfg,
		agentRepo: agentRepo,
		starter:   starter,
		calendar:  calendar,
		running:   make(map[string]string),
	}
}
