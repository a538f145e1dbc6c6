package usecase

import (
	"context"
	"errors"
	"time"

	"ai-task-orchestrator/internal/agentrun"
	"ai-task-orchestrator/internal/agentrun/repository"
	"ai-task-orchestrator/internal/model"
)

// Kick-off messages for chained roles. Wording stays terse; the task
// context lives in the resumed working directory, not the prompt.
const (
	implementationKickoff = "Continue implementing this task. Address any findings from the previous review."
	reviewKickoff         = "Review the changes made for this task. Report defects, risks and required fixes."
)

func kickoffMessage(role model.RunRole) string {
	if role == model.RunRoleReview {
		return reviewKickoff
	}
	return implementationKickoff
}

// MaybeChain starts the complementary role after a successful run, unless
// the task's workflow is already complete. The actual start happens after
// the chain delay on a detached goroutine so the finished run's terminal
// state reaches clients first.
func (uc *implUseCase) MaybeChain(ctx context.Context, sc model.Scope, run model.AgentRun) {
	next, ok := run.Role.Complement()
	if !ok {
		return
	}

	task, err := uc.taskRepo.Detail(ctx, run.TaskID)
	if err != nil {
		uc.l.Errorf(ctx, "Failed to load task %s before chaining: %v", run.TaskID, err)
		return
	}
	if task.WorkflowComplete {
		uc.l.Infof(ctx, "Task %s workflow is complete, stopping after %s run %s", run.TaskID, run.Role, run.ID)
		return
	}

	uc.l.Infof(ctx, "Chaining task %s: %s -> %s in %s", run.TaskID, run.Role, next, uc.cfg.ChainDelay)
	go uc.startComplement(context.WithoutCancel(ctx), sc, run, next)
}

// startComplement re-checks the stop conditions after the delay, since the
// workflow flag or a concurrent run may have appeared in the meantime.
func (uc *implUseCase) startComplement(ctx context.Context, sc model.Scope, prev model.AgentRun, role model.RunRole) {
	time.Sleep(uc.cfg.ChainDelay)

	task, err := uc.taskRepo.Detail(ctx, prev.TaskID)
	if err != nil {
		uc.l.Errorf(ctx, "Failed to re-check task %s before chaining: %v", prev.TaskID, err)
		return
	}
	if task.WorkflowComplete {
		uc.l.Infof(ctx, "Task %s workflow completed during the chain delay, not starting %s", prev.TaskID, role)
		return
	}

	running, err := uc.runRepo.List(ctx, repository.ListRunsOptions{TaskID: prev.TaskID, Status: model.RunStatusRunning})
	if err != nil {
		uc.l.Errorf(ctx, "Failed to check running runs for task %s: %v", prev.TaskID, err)
		return
	}
	if len(running) > 0 {
		uc.l.Infof(ctx, "Task %s already has run %s running, not chaining", prev.TaskID, running[0].ID)
		return
	}

	if _, err := uc.StartRun(ctx, sc, agentrun.StartRunInput{
		TaskID:  prev.TaskID,
		Role:    role,
		Message: kickoffMessage(role),
	}); err != nil {
		if errors.Is(err, agentrun.ErrRunInProgress) {
			uc.l.Infof(ctx, "Task %s grew a concurrent run during the chain delay, not chaining", prev.TaskID)
			return
		}
		// StartRun records the failure on the run it created, so the
		// broken chain stays visible in run history.
		uc.l.Errorf(ctx, "Failed to start chained %s run for task %s: %v", role, prev.TaskID, err)
	}
}
