package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/conversation/registry"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/claude"
)

// exchange is the in-flight state of one streamed turn.
type exchange struct {
	sc          model.Scope
	conv        model.Conversation
	entry       registry.Entry
	broadcast   conversation.Broadcast
	taskCast    conversation.TaskBroadcast
	stream      claude.Stream
	resumed     bool
	emitCreated bool // emit conversation-created at registration
	tempDir     string
	tempFiles   []string

	// knownSessionID is the identifier SendMessage resumes; start calls
	// leave it empty until the stream reveals one.
	knownSessionID string
	sessionID      string
	registered     bool
	announced      bool // streaming-started already emitted

	ready chan string // signals the observed session id to a waiting start call
	errc  chan error  // signals a failure before any session existed
}

func (ex *exchange) emit(ev model.Event) {
	ev.ConversationID = ex.conv.ID
	ex.broadcast(ex.entry.OwnerID(), ev)
}

// consume drains the stream, applying the per-chunk rules, and runs the
// termination path once the stream ends. The returned error is what
// SendMessage propagates; start calls discard it because their result was
// already delivered through ready/errc.
func (uc *implUseCase) consume(ctx context.Context, ex *exchange) error {
	for {
		msg, err := ex.stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return uc.terminate(ctx, ex, nil)
			}
			return uc.terminate(ctx, ex, err)
		}
		uc.handleChunk(ctx, ex, msg)
	}
}

func (uc *implUseCase) handleChunk(ctx context.Context, ex *exchange, msg *claude.Message) {
	if !ex.registered && msg.SessionID != "" {
		uc.register(ctx, ex, msg.SessionID)
		if ex.ready != nil {
			select {
			case ex.ready <- msg.SessionID:
			default:
			}
		}
	}

	// Chunks are forwarded verbatim; their internal shape is not this
	// component's business.
	ex.emit(model.Event{
		Type: model.EventClaudeResponse,
		Data: model.ResponsePayload{Chunk: msg.Raw},
	})

	if budget, ok := extractTokenBudget(msg, uc.cfg.ContextWindow); ok {
		ex.emit(model.Event{Type: model.EventTokenBudget, Data: budget})
	}

	if msg.Type == claude.MessageTypeAssistant && msg.Usage != nil {
		ex.emit(model.Event{
			Type: model.EventClaudeStatus,
			Data: model.StatusPayload{Tokens: msg.Usage.Total(), CanInterrupt: true},
		})
	}
}

// register runs the one-time bookkeeping for a freshly revealed session id:
// both registry entries, the persisted conversation binding, and the
// announcement events, all before the start call resolves.
func (uc *implUseCase) register(ctx context.Context, ex *exchange, sessionID string) {
	ex.sessionID = sessionID
	ex.registered = true

	uc.registry.Register(sessionID, registry.Record{
		Handle:    ex.stream,
		StartedAt: time.Now(),
		Status:    registry.StatusActive,
		TempDir:   ex.tempDir,
		TempFiles: ex.tempFiles,
	}, ex.entry)

	if ex.conv.SessionID == "" {
		if err := uc.convRepo.UpdateSessionID(ctx, ex.conv.ID, sessionID); err != nil {
			uc.l.Warnf(ctx, "Failed to persist session id %s on conversation %s: %v", sessionID, ex.conv.ID, err)
		} else {
			ex.conv.SessionID = sessionID
		}
	}

	if !ex.announced {
		ex.announced = true
		ex.emit(model.Event{Type: model.EventStreamingStarted, Data: model.StreamingPayload{SessionID: sessionID}})
	}
	ex.emit(model.Event{Type: model.EventSessionCreated, Data: model.StreamingPayload{SessionID: sessionID}})
	if ex.emitCreated {
		ex.emit(model.Event{Type: model.EventConversationCreated, Data: model.ConversationPayload{Conversation: ex.conv}})
		if ex.entry.TaskID != "" && ex.taskCast != nil {
			ex.taskCast(ex.entry.TaskID, model.Event{
				Type:           model.EventConversationAdded,
				ConversationID: ex.conv.ID,
				Data:           model.ConversationPayload{Conversation: ex.conv},
			})
		}
	}

	uc.l.Infof(ctx, "Session %s registered for conversation %s", sessionID, ex.conv.ID)
}

// terminate runs whichever termination path applies and always releases the
// exchange's resources exactly once.
func (uc *implUseCase) terminate(ctx context.Context, ex *exchange, streamErr error) error {
	aborted := false
	if ex.registered {
		rec, _, ok := uc.registry.Remove(ex.sessionID)
		if ok {
			uc.removeTemp(ctx, rec.TempDir)
		} else {
			// The abort path already removed the entries and cleaned up.
			aborted = true
		}
	} else {
		uc.removeTemp(ctx, ex.tempDir)
		if ex.knownSessionID == "" {
			// No session ever existed: reject the pending start call and
			// stay silent on the broadcast channel.
			if streamErr == nil {
				streamErr = conversation.ErrNoSessionID
			}
			if ex.errc != nil {
				select {
				case ex.errc <- streamErr:
				default:
				}
			}
			return streamErr
		}
	}

	sessionID := ex.sessionID
	if sessionID == "" {
		sessionID = ex.knownSessionID
	}

	if streamErr != nil {
		ex.emit(model.Event{Type: model.EventClaudeError, Data: model.ErrorPayload{Message: streamErr.Error()}})
	} else {
		ex.emit(model.Event{Type: model.EventClaudeComplete, Data: model.CompletePayload{ExitCode: 0, Resumed: ex.resumed}})
	}

	uc.completeSession(ctx, ex, sessionID, streamErr != nil, aborted)

	if streamErr != nil {
		return fmt.Errorf("stream for conversation %s failed: %w", ex.conv.ID, streamErr)
	}
	return nil
}
