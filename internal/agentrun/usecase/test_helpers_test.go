package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	runMemory "ai-task-orchestrator/internal/agentrun/repository/memory"
	"ai-task-orchestrator/internal/conversation"
	convMemory "ai-task-orchestrator/internal/conversation/repository/memory"
	"ai-task-orchestrator/internal/model"
)

// Mock logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Panic(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Panicf(ctx context.Context, template string, arg ...any)  {}

// fakeStarter is a scripted conversation starter recording every call.
type fakeStarter struct {
	mu    sync.Mutex
	calls []conversation.StartInput
	err   error
	seq   int

	signal chan struct{}
}

func newFakeStarter() *fakeStarter {
	return &fakeStarter{signal: make(chan struct{}, 16)}
}

func (f *fakeStarter) StartConversation(ctx context.Context, sc model.Scope, input conversation.StartInput) (conversation.StartOutput, error) {
	f.mu.Lock()
	f.calls = append(f.calls, input)
	f.seq++
	seq := f.seq
	err := f.err
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
	if err != nil {
		return conversation.StartOutput{}, err
	}
	return conversation.StartOutput{
		ConversationID: input.Options.ConversationID,
		SessionID:      fmt.Sprintf("s%d", seq),
	}, nil
}

func (f *fakeStarter) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeStarter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeStarter) lastCall(t *testing.T) conversation.StartInput {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("expected at least one start call")
	}
	return f.calls[len(f.calls)-1]
}

// waitForCall blocks until the starter has been invoked once more.
func (f *fakeStarter) waitForCall(t *testing.T) {
	t.Helper()
	select {
	case <-f.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a start call")
	}
}

const testChainDelay = 20 * time.Millisecond

type harness struct {
	uc      *implUseCase
	starter *fakeStarter
	runs    *runMemory.RunStore
	convs   *convMemory.ConversationStore
	tasks   *convMemory.TaskStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tasks := convMemory.NewTaskStore()
	if err := tasks.Save(context.Background(), model.Task{
		ID:      "t1",
		Title:   "Fix the importer",
		Status:  model.TaskStatusInProgress,
		UserID:  "u1",
		Project: &model.Project{ID: "p-t1", Name: "importer", WorkingDir: "/work/t1"},
	}); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	runs := runMemory.NewRunStore()
	convs := convMemory.NewConversationStore()
	starter := newFakeStarter()
	uc := New(&mockLogger{}, Config{ChainDelay: testChainDelay}, runs, convs, tasks, starter)

	return &harness{uc: uc, starter: starter, runs: runs, convs: convs, tasks: tasks}
}

// setWorkflowComplete rewrites the seeded task's workflow flag.
func (h *harness) setWorkflowComplete(t *testing.T, done bool) {
	t.Helper()
	task, err := h.tasks.Detail(context.Background(), "t1")
	if err != nil {
		t.Fatalf("failed to load seeded task: %v", err)
	}
	task.WorkflowComplete = done
	if err := h.tasks.Save(context.Background(), task); err != nil {
		t.Fatalf("failed to update seeded task: %v", err)
	}
}
