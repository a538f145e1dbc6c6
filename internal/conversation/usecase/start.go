package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/conversation/registry"
	"ai-task-orchestrator/internal/conversation/repository"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/claude"
)

func (uc *implUseCase) StartConversation(ctx context.Context, sc model.Scope, input conversation.StartInput) (conversation.StartOutput, error) {
	task, err := uc.taskRepo.Detail(ctx, input.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return conversation.StartOutput{}, conversation.ErrTaskNotFound
		}
		return conversation.StartOutput{}, fmt.Errorf("failed to load task %s: %w", input.TaskID, err)
	}
	workingDir := task.WorkingDir()
	if workingDir == "" {
		return conversation.StartOutput{}, conversation.ErrNoWorkingDir
	}

	conv, err := uc.resolveConversation(ctx, input.Options.ConversationID, repository.CreateConversationOptions{TaskID: task.ID})
	if err != nil {
		return conversation.StartOutput{}, err
	}

	// A task leaves the backlog once a session runs against it.
	if task.Status == model.TaskStatusTodo {
		if err := uc.taskRepo.UpdateStatus(ctx, task.ID, model.TaskStatusInProgress); err != nil {
			uc.l.Warnf(ctx, "Failed to move task %s to %s: %v", task.ID, model.TaskStatusInProgress, err)
		}
	}

	return uc.start(ctx, sc, startParams{
		conv:       conv,
		entry:      registry.Entry{TaskID: task.ID, ConversationID: conv.ID},
		workingDir: workingDir,
		message:    input.Message,
		opts:       input.Options,
	})
}

func (uc *implUseCase) StartAgentConversation(ctx context.Context, sc model.Scope, input conversation.StartAgentInput) (conversation.StartOutput, error) {
	agent, err := uc.agentRepo.Detail(ctx, input.AgentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return conversation.StartOutput{}, conversation.ErrAgentNotFound
		}
		return conversation.StartOutput{}, fmt.Errorf("failed to load agent %s: %w", input.AgentID, err)
	}
	if agent.WorkingDir == "" {
		return conversation.StartOutput{}, conversation.ErrNoWorkingDir
	}

	conv, err := uc.resolveConversation(ctx, input.Options.ConversationID, repository.CreateConversationOptions{AgentID: agent.ID})
	if err != nil {
		return conversation.StartOutput{}, err
	}

	return uc.start(ctx, sc, startParams{
		conv:         conv,
		entry:        registry.Entry{AgentID: agent.ID, ConversationID: conv.ID},
		workingDir:   agent.WorkingDir,
		systemPrompt: agent.SystemPrompt,
		message:      input.Message,
		opts:         input.Options,
	})
}

// resolveConversation loads the supplied conversation or creates a fresh one.
// A supplied conversation owned by someone else is treated as unknown.
func (uc *implUseCase) resolveConversation(ctx context.Context, id string, opt repository.CreateConversationOptions) (model.Conversation, error) {
	if id == "" {
		conv, err := uc.convRepo.Create(ctx, opt)
		if err != nil {
			return model.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := uc.convRepo.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Conversation{}, conversation.ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}
	if conv.TaskID != opt.TaskID || conv.AgentID != opt.AgentID {
		return model.Conversation{}, conversation.ErrConversationNotFound
	}
	return conv, nil
}

type startParams struct {
	conv         model.Conversation
	entry        registry.Entry
	workingDir   string
	systemPrompt string
	message      string
	opts         conversation.Options
}

// start issues the streamed request and resolves as soon as the session id
// is observed. The consuming loop keeps running in the background; a timeout
// abandons the wait without cancelling the underlying request.
func (uc *implUseCase) start(ctx context.Context, sc model.Scope, p startParams) (conversation.StartOutput, error) {
	message, tempDir, tempFiles, err := uc.prepareMessage(ctx, p.message, p.opts.Attachments)
	if err != nil {
		return conversation.StartOutput{}, err
	}

	systemPrompt := p.systemPrompt
	if p.opts.SystemPrompt != "" {
		systemPrompt = p.opts.SystemPrompt
	}
	permissionMode := p.opts.PermissionMode
	if permissionMode == "" {
		permissionMode = uc.cfg.DefaultPermissionMode
	}

	stream, err := uc.streamer.StartStream(ctx, claude.StreamRequest{
		Prompt:          message,
		WorkingDir:      p.workingDir,
		SystemPrompt:    systemPrompt,
		PermissionMode:  permissionMode,
		ResumeSessionID: p.conv.SessionID,
	})
	if err != nil {
		uc.removeTemp(ctx, tempDir)
		return conversation.StartOutput{}, fmt.Errorf("failed to start stream: %w", err)
	}

	broadcast := p.opts.Broadcast
	if broadcast == nil {
		broadcast = uc.broadcast
	}
	taskCast := p.opts.TaskBroadcast
	if taskCast == nil {
		taskCast = uc.taskCast
	}

	ex := &exchange{
		sc:          sc,
		conv:        p.conv,
		entry:       p.entry,
		broadcast:   broadcast,
		taskCast:    taskCast,
		stream:      stream,
		resumed:     p.conv.SessionID != "",
		emitCreated: true,
		tempDir:     tempDir,
		tempFiles:   tempFiles,
		ready:       make(chan string, 1),
		errc:        make(chan error, 1),
	}

	go uc.consume(context.WithoutCancel(ctx), ex)

	select {
	case sessionID := <-ex.ready:
		return conversation.StartOutput{ConversationID: p.conv.ID, SessionID: sessionID}, nil
	case err := <-ex.errc:
		return conversation.StartOutput{}, fmt.Errorf("stream failed before a session id was issued: %w", err)
	case <-time.After(uc.cfg.SessionReadyTimeout):
		return conversation.StartOutput{}, conversation.ErrSessionReadyTimeout
	case <-ctx.Done():
		return conversation.StartOutput{}, ctx.Err()
	}
}
