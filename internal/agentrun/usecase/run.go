package usecase

import (
	"context"
	"fmt"

	"ai-task-orchestrator/internal/agentrun"
	"ai-task-orchestrator/internal/agentrun/repository"
	"ai-task-orchestrator/internal/conversation"
	convRepository "ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
)

// StartRun is the task-run-start path: it persists the run, creates the
// conversation carrying it, links the two and only then opens the stream,
// so the completion bookkeeping can always find the run by conversation.
func (uc *implUseCase) StartRun(ctx context.Context, sc model.Scope, input agentrun.StartRunInput) (agentrun.StartRunOutput, error) {
	switch input.Role {
	case model.RunRolePlanning, model.RunRoleImplementation, model.RunRoleReview:
	default:
		return agentrun.StartRunOutput{}, agentrun.ErrInvalidRole
	}

	running, err := uc.runRepo.List(ctx, repository.ListRunsOptions{TaskID: input.TaskID, Status: model.RunStatusRunning})
	if err != nil {
		return agentrun.StartRunOutput{}, fmt.Errorf("failed to check running runs for task %s: %w", input.TaskID, err)
	}
	if len(running) > 0 {
		return agentrun.StartRunOutput{}, agentrun.ErrRunInProgress
	}

	run, err := uc.runRepo.Create(ctx, repository.CreateRunOptions{TaskID: input.TaskID, Role: input.Role})
	if err != nil {
		return agentrun.StartRunOutput{}, fmt.Errorf("failed to create %s run for task %s: %w", input.Role, input.TaskID, err)
	}

	conv, err := uc.convRepo.Create(ctx, convRepository.CreateConversationOptions{TaskID: input.TaskID})
	if err != nil {
		uc.failRun(ctx, run.ID, err)
		return agentrun.StartRunOutput{}, fmt.Errorf("failed to create conversation for run %s: %w", run.ID, err)
	}
	if err := uc.runRepo.LinkConversation(ctx, run.ID, conv.ID); err != nil {
		uc.failRun(ctx, run.ID, err)
		return agentrun.StartRunOutput{}, fmt.Errorf("failed to link run %s to conversation %s: %w", run.ID, conv.ID, err)
	}
	run.ConversationID = conv.ID

	opts := input.Options
	opts.ConversationID = conv.ID
	out, err := uc.starter.StartConversation(ctx, sc, conversation.StartInput{
		TaskID:  input.TaskID,
		Message: input.Message,
		Options: opts,
	})
	if err != nil {
		uc.failRun(ctx, run.ID, err)
		return agentrun.StartRunOutput{}, err
	}

	uc.l.Infof(ctx, "Started %s run %s for task %s (conversation %s, session %s)",
		input.Role, run.ID, input.TaskID, conv.ID, out.SessionID)
	return agentrun.StartRunOutput{
		Run:            run,
		ConversationID: out.ConversationID,
		SessionID:      out.SessionID,
	}, nil
}

// failRun records a start failure on the run so it neither blocks the
// overlap guard nor disappears from history.
func (uc *implUseCase) failRun(ctx context.Context, runID string, cause error) {
	if _, err := uc.runRepo.UpdateStatus(ctx, runID, repository.UpdateRunStatusOptions{
		Status: model.RunStatusFailed,
		Error:  cause.Error(),
	}); err != nil {
		uc.l.Errorf(ctx, "Failed to mark run %s failed: %v", runID, err)
	}
}

// CompleteRunForConversation flips the run referencing the conversation to
// its terminal status. Runs already terminal, and conversations without a
// run, yield (nil, nil) so the caller skips run-related follow-up.
func (uc *implUseCase) CompleteRunForConversation(ctx context.Context, taskID, conversationID string, errored bool) (*model.AgentRun, error) {
	runs, err := uc.runRepo.List(ctx, repository.ListRunsOptions{TaskID: taskID, ConversationID: conversationID})
	if err != nil {
		return nil, fmt.Errorf("failed to look up runs for conversation %s: %w", conversationID, err)
	}
	if len(runs) == 0 {
		return nil, nil
	}

	run := runs[len(runs)-1]
	if run.Status != model.RunStatusRunning {
		return nil, nil
	}

	status := model.RunStatusCompleted
	if errored {
		status = model.RunStatusFailed
	}
	updated, err := uc.runRepo.UpdateStatus(ctx, run.ID, repository.UpdateRunStatusOptions{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to mark run %s %s: %w", run.ID, status, err)
	}

	uc.l.Infof(ctx, "Run %s for task %s finished as %s", run.ID, taskID, status)
	return &updated, nil
}
