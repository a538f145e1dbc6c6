package usecase

import (
	"time"

	"ai-task-orchestrator/internal/agentrun"
	"ai-task-orchestrator/internal/agentrun/repository"
	convRepository "ai-task-orchestrator/internal/conversation/repository"
	pkgLog "ai-task-orchestrator/pkg/log"
)

// Config carries the run controller's tunables.
type Config struct {
	// ChainDelay separates a completed run from the complementary role's
	// start, so clients observe the terminal state before the next
	// running state appears.
	ChainDelay time.Duration
}

func (c *Config) setDefaults() {
	if c.ChainDelay <= 0 {
		c.ChainDelay = time.Second
	}
}

type implUseCase struct {
	l        pkgLog.Logger
	cfg      Config
	runRepo  repository.RunRepository
	convRepo convRepository.ConversationRepository
	taskRepo convRepository.TaskRepository
	starter  agentrun.ConversationStarter
}

// New creates the agent-run UseCase instance.
func New(
	l pkgLog.Logger,
	cfg Config,
	runRepo repository.RunRepository,
	convRepo convRepository.ConversationRepository,
	taskRepo convRepository.TaskRepository,
	starter agentrun.ConversationStarter,
) *implUseCase {
	cfg.setDefaults()
	return &implUseCase{
		l:        l,
		cfg:      cfg,
		runRepo:  runRepo,
		convRepo: convRepo,
		taskRepo: taskRepo,
		starter:  starter,
	}
}
