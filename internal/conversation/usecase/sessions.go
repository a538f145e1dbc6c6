package usecase

import (
	"context"
	"sort"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/conversation/registry"
)

// AbortSession requests cooperative cancellation of a live session and
// releases its registry state. The consuming loop notices the interrupted
// stream ending and runs the usual error termination path, which finds the
// registry already empty and skips the double cleanup.
func (uc *implUseCase) AbortSession(ctx context.Context, sessionID string) bool {
	rec, ok := uc.registry.Get(sessionID)
	if !ok {
		return false
	}

	if rec.Handle != nil {
		if err := rec.Handle.Interrupt(); err != nil {
			uc.l.Warnf(ctx, "Failed to interrupt session %s: %v", sessionID, err)
		}
	}
	uc.registry.MarkAborted(sessionID)

	removed, _, ok := uc.registry.Remove(sessionID)
	if ok {
		uc.removeTemp(ctx, removed.TempDir)
	}
	uc.l.Infof(ctx, "Session %s aborted", sessionID)
	return true
}

func (uc *implUseCase) IsSessionActive(sessionID string) bool {
	return uc.registry.IsActive(sessionID)
}

func (uc *implUseCase) ActiveSessionIDs() []string {
	ids := uc.registry.ActiveSessionIDs()
	sort.Strings(ids)
	return ids
}

func (uc *implUseCase) StreamingByConversation(conversationID string) (conversation.StreamingSession, bool) {
	sessionID, entry, ok := uc.registry.ByConversation(conversationID)
	if !ok {
		return conversation.StreamingSession{}, false
	}
	return toStreamingSession(sessionID, entry), true
}

func (uc *implUseCase) AllStreamingSessions() []conversation.StreamingSession {
	entries := uc.registry.Entries()
	sessions := make([]conversation.StreamingSession, 0, len(entries))
	for sessionID, entry := range entries {
		sessions = append(sessions, toStreamingSession(sessionID, entry))
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].SessionID < sessions[j].SessionID })
	return sessions
}

func toStreamingSession(sessionID string, entry registry.Entry) conversation.StreamingSession {
	return conversation.StreamingSession{
		SessionID:      sessionID,
		TaskID:         entry.TaskID,
		AgentID:        entry.AgentID,
		ConversationID: entry.ConversationID,
	}
}
