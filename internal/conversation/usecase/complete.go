package usecase

import (
	"context"
	"fmt"

	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/internal/notify"
)

// completeSession is the shared lifecycle glue, invoked exactly once per
// terminated session that reached active status.
func (uc *implUseCase) completeSession(ctx context.Context, ex *exchange, sessionID string, errored, aborted bool) {
	ex.emit(model.Event{Type: model.EventStreamingEnded, Data: model.StreamingPayload{SessionID: sessionID}})

	if ex.entry.TaskID != "" {
		uc.completeTaskSession(ctx, ex, errored, aborted)
		return
	}
	uc.completeAgentSession(ctx, ex, errored, aborted)
}

func (uc *implUseCase) completeTaskSession(ctx context.Context, ex *exchange, errored, aborted bool) {
	taskID := ex.entry.TaskID

	if uc.tracker != nil {
		run, err := uc.tracker.CompleteRunForConversation(ctx, taskID, ex.conv.ID, errored)
		if err != nil {
			uc.l.Errorf(ctx, "Failed to update agent run for conversation %s: %v", ex.conv.ID, err)
		}
		if run != nil {
			if ex.taskCast != nil {
				ex.taskCast(taskID, model.Event{
					Type:           model.EventAgentRunUpdated,
					ConversationID: ex.conv.ID,
					Data:           model.RunPayload{Run: *run},
				})
			}
			if !errored && !aborted {
				uc.tracker.MaybeChain(ctx, ex.sc, *run)
			}
		}
	}

	if errored || aborted || uc.notifier == nil {
		return
	}
	task, err := uc.taskRepo.Detail(ctx, taskID)
	if err != nil {
		uc.l.Warnf(ctx, "Skipping notification, failed to load task %s: %v", taskID, err)
		return
	}
	userID := ex.sc.UserID
	if userID == "" {
		userID = task.UserID
	}
	if userID == "" {
		return
	}
	uc.notifier.Enqueue(ctx, notify.Notification{
		UserID:         userID,
		Title:          fmt.Sprintf("Assistant finished: %s", task.Title),
		TaskID:         taskID,
		ConversationID: ex.conv.ID,
		Metadata:       map[string]string{"event": string(model.EventClaudeComplete)},
	})
}

func (uc *implUseCase) completeAgentSession(ctx context.Context, ex *exchange, errored, aborted bool) {
	if errored || aborted || uc.notifier == nil {
		return
	}

	title := "Custom agent finished"
	userID := ex.sc.UserID
	if agent, err := uc.agentRepo.Detail(ctx, ex.entry.AgentID); err == nil {
		if agent.Name != "" {
			title = fmt.Sprintf("Custom agent finished: %s", agent.Name)
		}
		if userID == "" {
			userID = agent.UserID
		}
	} else {
		uc.l.Warnf(ctx, "Failed to load agent %s for notification: %v", ex.entry.AgentID, err)
	}
	if userID == "" {
		return
	}
	uc.notifier.Enqueue(ctx, notify.Notification{
		UserID:         userID,
		Title:          title,
		ConversationID: ex.conv.ID,
		Metadata:       map[string]string{"event": string(model.EventClaudeComplete)},
	})
}
