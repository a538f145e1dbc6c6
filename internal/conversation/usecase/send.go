package usecase

import (
	"context"
	"errors"
	"fmt"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/conversation/registry"
	"ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/claude"
)

// SendMessage continues an existing session and blocks until the whole
// stream has been consumed.
func (uc *implUseCase) SendMessage(ctx context.Context, sc model.Scope, input conversation.SendInput) error {
	conv, err := uc.convRepo.Detail(ctx, input.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return conversation.ErrConversationNotFound
		}
		return fmt.Errorf("failed to load conversation %s: %w", input.ConversationID, err)
	}
	if conv.SessionID == "" {
		return conversation.ErrNoSessionYet
	}

	entry := registry.Entry{ConversationID: conv.ID}
	var workingDir, systemPrompt string
	if conv.TaskID != "" {
		task, err := uc.taskRepo.Detail(ctx, conv.TaskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return conversation.ErrTaskNotFound
			}
			return fmt.Errorf("failed to load task %s: %w", conv.TaskID, err)
		}
		workingDir = task.WorkingDir()
		entry.TaskID = conv.TaskID
	} else {
		agent, err := uc.agentRepo.Detail(ctx, conv.AgentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return conversation.ErrAgentNotFound
			}
			return fmt.Errorf("failed to load agent %s: %w", conv.AgentID, err)
		}
		workingDir = agent.WorkingDir
		systemPrompt = agent.SystemPrompt
		entry.AgentID = conv.AgentID
	}
	if workingDir == "" {
		return conversation.ErrNoWorkingDir
	}

	message, tempDir, tempFiles, err := uc.prepareMessage(ctx, input.Message, input.Options.Attachments)
	if err != nil {
		return err
	}

	if input.Options.SystemPrompt != "" {
		systemPrompt = input.Options.SystemPrompt
	}
	permissionMode := input.Options.PermissionMode
	if permissionMode == "" {
		permissionMode = uc.cfg.DefaultPermissionMode
	}

	broadcast := input.Options.Broadcast
	if broadcast == nil {
		broadcast = uc.broadcast
	}
	taskCast := input.Options.TaskBroadcast
	if taskCast == nil {
		taskCast = uc.taskCast
	}

	ex := &exchange{
		sc:             sc,
		conv:           conv,
		entry:          entry,
		broadcast:      broadcast,
		taskCast:       taskCast,
		resumed:        true,
		knownSessionID: conv.SessionID,
		tempDir:        tempDir,
		tempFiles:      tempFiles,
	}

	ex.announced = true
	ex.emit(model.Event{Type: model.EventStreamingStarted, Data: model.StreamingPayload{SessionID: conv.SessionID}})

	stream, err := uc.streamer.StartStream(ctx, claude.StreamRequest{
		Prompt:          message,
		WorkingDir:      workingDir,
		SystemPrompt:    systemPrompt,
		PermissionMode:  permissionMode,
		ResumeSessionID: conv.SessionID,
	})
	if err != nil {
		uc.removeTemp(ctx, tempDir)
		ex.emit(model.Event{Type: model.EventClaudeError, Data: model.ErrorPayload{Message: err.Error()}})
		uc.completeSession(ctx, ex, conv.SessionID, true, false)
		return fmt.Errorf("failed to start stream: %w", err)
	}
	ex.stream = stream

	return uc.consume(context.WithoutCancel(ctx), ex)
}
