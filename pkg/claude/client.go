package claude

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Client spawns the assistant CLI for streamed turns.
type Client struct {
	binary string
}

// NewClient creates a CLI client. An empty binary falls back to DefaultBinary.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{binary: binary}
}

// Stream is one live CLI turn. Next returns decoded chunks until the process
// exits, then io.EOF on a clean exit or the process error otherwise.
type Stream interface {
	Next(ctx context.Context) (*Message, error)
	Interrupt() error
	Close() error
}

// StartStream launches the CLI in the requested working directory and begins
// decoding its stream-json output. The returned stream is not bound to ctx;
// it lives until the process exits or Close is called.
func (c *Client) StartStream(ctx context.Context, req StreamRequest) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := []string{"-p", req.Prompt, "--output-format", "stream-json", "--verbose"}
	if req.ResumeSessionID != "" {
		args = append(args, "--resume", req.ResumeSessionID)
	}
	if req.PermissionMode != "" {
		args = append(args, "--permission-mode", req.PermissionMode)
	}
	if req.SystemPrompt != "" {
		args = append(args, "--append-system-prompt", req.SystemPrompt)
	}
	if len(req.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(req.AllowedTools, ","))
	}
	if len(req.DisallowedTools) > 0 {
		args = append(args, "--disallowedTools", strings.Join(req.DisallowedTools, ","))
	}

	cmd := exec.Command(c.binary, args...)
	cmd.Dir = req.WorkingDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.binary, err)
	}

	s := &cliStream{
		binary: c.binary,
		cmd:    cmd,
		chunks: make(chan *Message, 16),
		done:   make(chan struct{}),
		result: make(chan error, 1),
	}

	var g errgroup.Group
	g.Go(func() error {
		defer close(s.chunks)
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 64*1024), scanBufferSize)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			var msg Message
			if err := json.Unmarshal(line, &msg); err != nil {
				// Non-JSON noise on stdout is skipped, not fatal.
				continue
			}
			select {
			case s.chunks <- &msg:
			case <-s.done:
				return nil
			}
		}
		return sc.Err()
	})
	g.Go(func() error {
		tail, _ := io.ReadAll(io.LimitReader(stderr, 8*1024))
		_, _ = io.Copy(io.Discard, stderr)
		s.mu.Lock()
		s.stderrTail = strings.TrimSpace(string(tail))
		s.mu.Unlock()
		return nil
	})

	go func() {
		readErr := g.Wait()
		waitErr := cmd.Wait()
		switch {
		case waitErr != nil:
			s.mu.Lock()
			tail := s.stderrTail
			s.mu.Unlock()
			if tail != "" {
				s.result <- fmt.Errorf("%s: %w: %s", s.binary, waitErr, tail)
			} else {
				s.result <- fmt.Errorf("%s: %w", s.binary, waitErr)
			}
		case readErr != nil:
			s.result <- fmt.Errorf("%s: %w", s.binary, readErr)
		default:
			s.result <- nil
		}
	}()

	return s, nil
}

type cliStream struct {
	binary string
	cmd    *exec.Cmd
	chunks chan *Message
	done   chan struct{}
	result chan error

	mu         sync.Mutex
	stderrTail string

	finishOnce sync.Once
	finishErr  error
	closeOnce  sync.Once
}

var _ Stream = (*cliStream)(nil)

func (s *cliStream) Next(ctx context.Context) (*Message, error) {
	select {
	case msg, ok := <-s.chunks:
		if !ok {
			return nil, s.finish()
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *cliStream) finish() error {
	s.finishOnce.Do(func() {
		if err := <-s.result; err != nil {
			s.finishErr = err
		} else {
			s.finishErr = io.EOF
		}
	})
	return s.finishErr
}

// Interrupt asks the CLI to stop its current turn. The stream keeps draining
// until the process exits, so callers still read the tail after this.
func (s *cliStream) Interrupt() error {
	if s.cmd.Process == nil {
		return fmt.Errorf("%s not started", s.binary)
	}
	return s.cmd.Process.Signal(os.Interrupt)
}

// Close tears the stream down without waiting for a graceful exit.
func (s *cliStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
	})
	return nil
}
