package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-task-orchestrator/internal/agentrun"
	"ai-task-orchestrator/internal/agentrun/repository"
	"ai-task-orchestrator/internal/model"
)

func TestStartRunCreatesRunConversationAndSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.uc.StartRun(ctx, model.Scope{UserID: "u1"}, agentrun.StartRunInput{
		TaskID:  "t1",
		Role:    model.RunRoleImplementation,
		Message: "implement the importer fix",
	})
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	if out.Run.Role != model.RunRoleImplementation {
		t.Errorf("expected implementation role, got %s", out.Run.Role)
	}
	if out.Run.Status != model.RunStatusRunning {
		t.Errorf("expected running status, got %s", out.Run.Status)
	}
	if out.ConversationID == "" || out.SessionID == "" {
		t.Fatalf("expected conversation and session ids, got %+v", out)
	}
	if out.Run.ConversationID != out.ConversationID {
		t.Errorf("run linked to %q, output says %q", out.Run.ConversationID, out.ConversationID)
	}

	conv, err := h.convs.Detail(ctx, out.ConversationID)
	if err != nil {
		t.Fatalf("conversation record missing: %v", err)
	}
	if conv.TaskID != "t1" {
		t.Errorf("expected conversation owned by t1, got %q", conv.TaskID)
	}

	call := h.starter.lastCall(t)
	if call.TaskID != "t1" || call.Message != "implement the importer fix" {
		t.Errorf("unexpected start call %+v", call)
	}
	if call.Options.ConversationID != out.ConversationID {
		t.Errorf("start call used conversation %q, want %q", call.Options.ConversationID, out.ConversationID)
	}

	stored, err := h.runs.List(ctx, repository.ListRunsOptions{TaskID: "t1", ConversationID: out.ConversationID})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != out.Run.ID {
		t.Fatalf("expected the created run to be linked, got %+v", stored)
	}
}

func TestStartRunRejectsUnknownRole(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.StartRun(context.Background(), model.Scope{}, agentrun.StartRunInput{
		TaskID: "t1",
		Role:   model.RunRole("deploy"),
	})
	if !errors.Is(err, agentrun.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if h.starter.callCount() != 0 {
		t.Error("no stream should be started for an invalid role")
	}
}

func TestStartRunRejectsOverlappingRun(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.runs.Create(ctx, repository.CreateRunOptions{TaskID: "t1", Role: model.RunRoleImplementation}); err != nil {
		t.Fatalf("failed to seed running run: %v", err)
	}

	_, err := h.uc.StartRun(ctx, model.Scope{}, agentrun.StartRunInput{
		TaskID:  "t1",
		Role:    model.RunRoleReview,
		Message: "review",
	})
	if !errors.Is(err, agentrun.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if h.starter.callCount() != 0 {
		t.Error("no stream should be started while another run holds the task")
	}

	all, err := h.runs.List(ctx, repository.ListRunsOptions{TaskID: "t1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected only the seeded run, got %d", len(all))
	}
}

func TestStartRunMarksRunFailedWhenStartFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.starter.failWith(errors.New("binary not found"))

	_, err := h.uc.StartRun(ctx, model.Scope{}, agentrun.StartRunInput{
		TaskID:  "t1",
		Role:    model.RunRoleImplementation,
		Message: "implement",
	})
	if err == nil || !strings.Contains(err.Error(), "binary not found") {
		t.Fatalf("expected the start failure to propagate, got %v", err)
	}

	all, err := h.runs.List(ctx, repository.ListRunsOptions{TaskID: "t1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(all))
	}
	run := all[0]
	if run.Status != model.RunStatusFailed {
		t.Errorf("expected failed status, got %s", run.Status)
	}
	if !strings.Contains(run.Error, "binary not found") {
		t.Errorf("expected the cause on the run, got %q", run.Error)
	}
	if run.ConversationID == "" {
		t.Error("expected the conversation to stay linked on the failed run")
	}
	if run.CompletedAt == nil {
		t.Error("expected a completion timestamp on the failed run")
	}
}

func TestCompleteRunForConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.uc.StartRun(ctx, model.Scope{}, agentrun.StartRunInput{
		TaskID:  "t1",
		Role:    model.RunRoleImplementation,
		Message: "implement",
	})
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	run, err := h.uc.CompleteRunForConversation(ctx, "t1", out.ConversationID, false)
	if err != nil {
		t.Fatalf("CompleteRunForConversation failed: %v", err)
	}
	if run == nil {
		t.Fatal("expected the linked run back")
	}
	if run.Status != model.RunStatusCompleted {
		t.Errorf("expected completed, got %s", run.Status)
	}
	if run.CompletedAt == nil {
		t.Error("expected a completion timestamp")
	}

	// Already terminal: later completions of the same conversation are no-ops.
	again, err := h.uc.CompleteRunForConversation(ctx, "t1", out.ConversationID, true)
	if err != nil {
		t.Fatalf("second completion failed: %v", err)
	}
	if again != nil {
		t.Fatalf("expected nil for an already terminal run, got %+v", again)
	}
	stored, err := h.runs.List(ctx, repository.ListRunsOptions{TaskID: "t1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if stored[0].Status != model.RunStatusCompleted {
		t.Errorf("terminal status must not change, got %s", stored[0].Status)
	}
}

func TestCompleteRunForConversationMirrorsError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.uc.StartRun(ctx, model.Scope{}, agentrun.StartRunInput{
		TaskID:  "t1",
		Role:    model.RunRoleReview,
		Message: "review",
	})
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	run, err := h.uc.CompleteRunForConversation(ctx, "t1", out.ConversationID, true)
	if err != nil {
		t.Fatalf("CompleteRunForConversation failed: %v", err)
	}
	if run == nil || run.Status != model.RunStatusFailed {
		t.Fatalf("expected a failed run, got %+v", run)
	}
}

func TestCompleteRunForConversationWithoutRun(t *testing.T) {
	h := newHarness(t)

	run, err := h.uc.CompleteRunForConversation(context.Background(), "t1", "no-such-conversation", false)
	if err != nil {
		t.Fatalf("CompleteRunForConversation failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil for an unlinked conversation, got %+v", run)
	}
}
