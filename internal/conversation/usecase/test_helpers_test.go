package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"ai-task-orchestrator/internal/conversation"
	"ai-task-orchestrator/internal/conversation/registry"
	"ai-task-orchestrator/internal/conversation/repository/memory"
	"ai-task-orchestrator/internal/model"
	"ai-task-orchestrator/internal/notify"
	"ai-task-orchestrator/pkg/claude"
)

var (
	errInterrupted      = errors.New("signal: interrupt")
	errNoScriptedStream = errors.New("no scripted stream queued")
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

type streamStep struct {
	msg *claude.Message
	err error
}

// fakeStream is a scripted claude.Stream fed by the test.
type fakeStream struct {
	steps chan streamStep

	mu              sync.Mutex
	interrupted     bool
	closed          bool
	silentInterrupt bool // interrupt without ending the stream
}

func newFakeStream() *fakeStream {
	return &fakeStream{steps: make(chan streamStep, 32)}
}

// push feeds one raw JSON chunk through the real decoder.
func (f *fakeStream) push(t *testing.T, raw string) {
	t.Helper()
	var msg claude.Message
	if err := msg.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("bad scripted chunk %s: %v", raw, err)
	}
	f.steps <- streamStep{msg: &msg}
}

// finish ends the stream cleanly.
func (f *fakeStream) finish() {
	f.steps <- streamStep{err: io.EOF}
}

// fail ends the stream with an error.
func (f *fakeStream) fail(err error) {
	f.steps <- streamStep{err: err}
}

func (f *fakeStream) Next(ctx context.Context) (*claude.Message, error) {
	select {
	case step := <-f.steps:
		return step.msg, step.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Interrupt mimics the CLI dying on SIGINT: the stream ends with an error
// unless the test asked for a silent interrupt.
func (f *fakeStream) Interrupt() error {
	f.mu.Lock()
	f.interrupted = true
	silent := f.silentInterrupt
	f.mu.Unlock()
	if !silent {
		f.fail(errInterrupted)
	}
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStream) wasInterrupted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interrupted
}

// fakeStreamer hands out scripted streams in order.
type fakeStreamer struct {
	mu       sync.Mutex
	pending  []*fakeStream
	requests []claude.StreamRequest
	err      error
}

func (f *fakeStreamer) enqueue(s *fakeStream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, s)
}

func (f *fakeStreamer) StartStream(ctx context.Context, req claude.StreamRequest) (claude.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pending) == 0 {
		return nil, errNoScriptedStream
	}
	s := f.pending[0]
	f.pending = f.pending[1:]
	return s, nil
}

func (f *fakeStreamer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeStreamer) lastRequest(t *testing.T) claude.StreamRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no stream request captured")
	}
	return f.requests[len(f.requests)-1]
}

type recordedEvent struct {
	owner string
	ev    model.Event
}

// eventRecorder is a recording broadcast fake.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
	signal chan model.EventType
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{signal: make(chan model.EventType, 64)}
}

func (r *eventRecorder) broadcast(owner string, ev model.Event) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{owner: owner, ev: ev})
	r.mu.Unlock()
	r.signal <- ev.Type
}

// waitFor blocks until an event of the given type has been broadcast.
func (r *eventRecorder) waitFor(t *testing.T, want model.EventType) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-r.signal:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event, saw %v", want, r.types())
		}
	}
}

func (r *eventRecorder) types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.ev.Type)
	}
	return out
}

func (r *eventRecorder) find(eventType model.EventType) (model.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ev.Type == eventType {
			return e.ev, true
		}
	}
	return model.Event{}, false
}

func (r *eventRecorder) findLast(eventType model.EventType) (model.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].ev.Type == eventType {
			return r.events[i].ev, true
		}
	}
	return model.Event{}, false
}

func (r *eventRecorder) count(eventType model.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.ev.Type == eventType {
			n++
		}
	}
	return n
}

type completeCall struct {
	taskID         string
	conversationID string
	errored        bool
}

// fakeTracker records completion bookkeeping and chaining requests.
type fakeTracker struct {
	mu        sync.Mutex
	run       *model.AgentRun
	completed []completeCall
	chained   []model.AgentRun
}

func (f *fakeTracker) CompleteRunForConversation(ctx context.Context, taskID, conversationID string, errored bool) (*model.AgentRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, completeCall{taskID: taskID, conversationID: conversationID, errored: errored})
	return f.run, nil
}

func (f *fakeTracker) MaybeChain(ctx context.Context, sc model.Scope, run model.AgentRun) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chained = append(f.chained, run)
}

func (f *fakeTracker) completions() []completeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completeCall(nil), f.completed...)
}

func (f *fakeTracker) chainedRuns() []model.AgentRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AgentRun(nil), f.chained...)
}

// fakeQueue records queued notifications.
type fakeQueue struct {
	mu     sync.Mutex
	queued []notify.Notification
}

func (f *fakeQueue) Enqueue(ctx context.Context, n notify.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, n)
}

func (f *fakeQueue) notifications() []notify.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Notification(nil), f.queued...)
}

// harness bundles a usecase with all its fakes and seeded stores.
type harness struct {
	uc       *implUseCase
	reg      *registry.Registry
	streamer *fakeStreamer
	events   *eventRecorder
	taskCast *eventRecorder
	tracker  *fakeTracker
	queue    *fakeQueue
	convs    *memory.ConversationStore
	tasks    *memory.TaskStore
	agents   *memory.AgentStore
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		reg:      registry.New(),
		streamer: &fakeStreamer{},
		events:   newEventRecorder(),
		taskCast: newEventRecorder(),
		tracker:  &fakeTracker{},
		queue:    &fakeQueue{},
		convs:    memory.NewConversationStore(),
		tasks:    memory.NewTaskStore(),
		agents:   memory.NewAgentStore(),
	}
	h.uc = New(
		&mockLogger{},
		cfg,
		h.streamer,
		h.reg,
		h.convs,
		h.tasks,
		h.agents,
		h.queue,
		h.events.broadcast,
		conversation.TaskBroadcast(h.taskCast.broadcast),
	)
	h.uc.SetRunTracker(h.tracker)

	h.seedTask(t, "t1", "u1", "/work/t1")
	h.seedAgent(t, "a1", "u2", "/work/a1")
	return h
}

func (h *harness) seedTask(t *testing.T, id, userID, workingDir string) {
	t.Helper()
	task := model.Task{
		ID:     id,
		Title:  "Task " + id,
		Status: model.TaskStatusTodo,
		UserID: userID,
	}
	if workingDir != "" {
		task.ProjectID = "p-" + id
		task.Project = &model.Project{ID: "p-" + id, Name: "Project " + id, WorkingDir: workingDir}
	}
	if err := h.tasks.Save(context.Background(), task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
}

func (h *harness) seedAgent(t *testing.T, id, userID, workingDir string) {
	t.Helper()
	agent := model.Agent{
		ID:           id,
		Name:         "Agent " + id,
		UserID:       userID,
		WorkingDir:   workingDir,
		SystemPrompt: "You are " + id,
	}
	if err := h.agents.Save(context.Background(), agent); err != nil {
		t.Fatalf("failed to seed agent: %v", err)
	}
}
