package scheduler

import (
	"context"
	"fmt"
	"time"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/pkg/claude"
	"ai-task-orchestrator/pkg/gcalendar"
)

// Start launches the tick loop with an immediate first check, catching
// agents that came due while the process was down. Starting an already
// started scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.l.Warnf(ctx, "Scheduler already started")
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)
	s.l.Infof(ctx, "Scheduler started, ticking every %s", s.cfg.TickInterval)
}

// Stop cancels the tick loop and waits for it to drain. Stopping an idle
// scheduler is a no-op; a later Start creates a fresh loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.tick(ctx)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick processes every due agent in sequence. One agent's failure never
// blocks the rest of the batch.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	due, err := s.agentRepo.Due(ctx, now)
	if err != nil {
		s.l.Errorf(ctx, "Failed to list due agents: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.l.Debugf(ctx, "Tick at %s: %d agent(s) due", now.Format(time.RFC3339), len(due))

	seen := make(map[string]struct{}, len(due))
	for _, agent := range due {
		if ctx.Err() != nil {
			return
		}
		// A storage hiccup may hand back the same agent twice in one batch.
		if _, dup := seen[agent.ID]; dup {
			continue
		}
		seen[agent.ID] = struct{}{}
		s.runAgent(ctx, agent)
	}
}

// runAgent triggers one scheduled run. Whatever the outcome, the claim is
// resolved and the agent's last/next-run bookkeeping is updated.
func (s *Scheduler) runAgent(ctx context.Context, agent model.Agent) {
	if !s.claimAgent(ctx, agent.ID) {
		return
	}

	triggeredAt := time.Now()
	sessionID := ""
	defer func() {
		s.releaseAgent(agent.ID, sessionID)
		s.updateRunTimes(ctx, agent, triggeredAt)
	}()

	if agent.CronPrompt == "" {
		s.l.Warnf(ctx, "Agent %s is scheduled but has no cron prompt, skipping", agent.ID)
		return
	}

	out, err := s.starter.StartAgentConversation(ctx, model.Scope{UserID: agent.UserID}, conversation.StartAgentInput{
		AgentID: agent.ID,
		Message: agent.CronPrompt,
		Options: conversation.Options{
			// Nobody is around to answer permission prompts on a cron run.
			PermissionMode: claude.PermissionModeBypass,
		},
	})
	if err != nil {
		s.l.Errorf(ctx, "Scheduled run for agent %s failed: %v", agent.ID, err)
		return
	}
	sessionID = out.SessionID

	s.l.Infof(ctx, "Scheduled run for agent %s started conversation %s (session %s)",
		agent.ID, out.ConversationID, out.SessionID)
	s.mirrorToCalendar(ctx, agent, triggeredAt)
}

// claimAgent reserves the agent for this trigger. False means the agent is
// already mid-run: claimed by an in-flight start, or its previous scheduled
// session is still streaming. Stale claims from ended sessions are cleared.
func (s *Scheduler) claimAgent(ctx context.Context, agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID, ok := s.running[agentID]; ok {
		if sessionID == "" || s.starter.IsSessionActive(sessionID) {
			s.l.Infof(ctx, "Agent %s is already mid-run, skipping this trigger", agentID)
			return false
		}
		delete(s.running, agentID)
	}
	s.running[agentID] = ""
	return true
}

// releaseAgent resolves a claim: a failed start clears it, a successful one
// pins the live session id so later ticks skip the agent until it ends.
func (s *Scheduler) releaseAgent(agentID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		delete(s.running, agentID)
		return
	}
	s.running[agentID] = sessionID
}

// updateRunTimes records the trigger and recomputes the next due time. An
// expression that no longer parses disables the schedule instead of firing
// the agent every tick forever.
func (s *Scheduler) updateRunTimes(ctx context.Context, agent model.Agent, triggeredAt time.Time) {
	next, err := nextRun(agent.CronExpr, time.Now())
	if err != nil {
		s.l.Errorf(ctx, "Agent %s has a broken cron expression %q, disabling its schedule: %v",
			agent.ID, agent.CronExpr, err)
		if uerr := s.agentRepo.UpdateScheduleEnabled(ctx, agent.ID, false, nil); uerr != nil {
			s.l.Errorf(ctx, "Failed to disable schedule for agent %s: %v", agent.ID, uerr)
		}
		return
	}
	if err := s.agentRepo.UpdateRunTimes(ctx, agent.ID, triggeredAt, &next); err != nil {
		s.l.Errorf(ctx, "Failed to update run times for agent %s: %v", agent.ID, err)
	}
}

// mirrorToCalendar posts the triggered run to the configured calendar.
// Returns silently when no calendar is wired; failures are non-fatal.
func (s *Scheduler) mirrorToCalendar(ctx context.Context, agent model.Agent, triggeredAt time.Time) {
	if s.calendar == nil {
		return
	}

	name := agent.Name
	if name == "" {
		name = agent.ID
	}
	event, err := s.calendar.CreateEvent(ctx, gcalendar.CreateEventRequest{
		CalendarID:  s.cfg.CalendarID,
		Summary:     fmt.Sprintf("Scheduled agent run: %s", name),
		Description: fmt.Sprintf("Cron %q triggered agent %s.", agent.CronExpr, agent.ID),
		StartTime:   triggeredAt,
		EndTime:     triggeredAt.Add(30 * time.Minute),
		Timezone:    s.cfg.Timezone,
	})
	if err != nil {
		s.l.Warnf(ctx, "Calendar mirror for agent %s failed (non-fatal): %v", agent.ID, err)
		return
	}
	s.l.Debugf(ctx, "Calendar event %s mirrors the run of agent %s", event.ID, agent.ID)
}
