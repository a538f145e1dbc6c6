package usecase

import (
	"time"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/conversation/registry"
	"ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/internal/notify"
	pkgLog "ai-task-orchestrator/pkg/log"
)

const defaultContextWindow = 160_000

// Config carries the orchestrator's tunables.
type Config struct {
	// SessionReadyTimeout bounds how long a start call waits for the first
	// chunk carrying a session id.
	SessionReadyTimeout time.Duration
	// ContextWindow is the token-budget denominator.
	ContextWindow int64
	// DefaultPermissionMode is used when a call supplies none.
	DefaultPermissionMode string
}

func (c *Config) setDefaults() {
	if c.SessionReadyTimeout <= 0 {
		c.SessionReadyTimeout = 30 * time.Second
	}
	if c.ContextWindow <= 0 {
		c.ContextWindow = defaultContextWindow
	}
}

type implUseCase struct {
	l         pkgLog.Logger
	cfg       Config
	streamer  conversation.Streamer
	registry  *registry.Registry
	convRepo  repository.ConversationRepository
	taskRepo  repository.TaskRepository
	agentRepo repository.AgentRepository
	notifier  notify.Queue
	broadcast conversation.Broadcast
	taskCast  conversation.TaskBroadcast

	// tracker is wired after construction via SetRunTracker.
	tracker conversation.RunTracker
}

// New creates the conversation UseCase instance.
func New(
	l pkgLog.Logger,
	cfg Config,
	streamer conversation.Streamer,
	reg *registry.Registry,
	convRepo repository.ConversationRepository,
	taskRepo repository.TaskRepository,
	agentRepo repository.AgentRepository,
	notifier notify.Queue,
	broadcast conversation.Broadcast,
	taskCast conversation.TaskBroadcast,
) *implUseCase {
	cfg.setDefaults()
	if broadcast == nil {
		broadcast = func(string, model.Event) {}
	}
	return &implUseCase{
		l:         l,
		cfg:       cfg,
		streamer:  streamer,
		registry:  reg,
		convRepo:  convRepo,
		taskRepo:  taskRepo,
		agentRepo: agentRepo,
		notifier:  notifier,
		broadcast: broadcast,
		taskCast:  taskCast,
	}
}

// SetRunTracker wires agent-run bookkeeping into session completion.
// Must be called during wiring, before any conversation is started.
func (uc *implUseCase) SetRunTracker(rt conversation.RunTracker) {
	uc.tracker = rt
}
