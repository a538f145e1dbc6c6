package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ai-task-orchestrator/internal/conversation"
)

// prepareMessage writes attachments into a fresh temp directory and rewrites
// their placeholders in the message. Attachments never referenced by a
// placeholder are appended as a trailing file list. The caller owns the
// returned directory; every termination path deletes it.
func (uc *implUseCase) prepareMessage(ctx context.Context, message string, attachments []conversation.Attachment) (string, string, []string, error) {
	if len(attachments) == 0 {
		return message, "", nil, nil
	}

	dir, err := os.MkdirTemp("", "attachments-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}

	var (
		paths    []string
		trailing []string
	)
	for _, att := range attachments {
		name := filepath.Base(att.Name)
		if name == "" || name == "." || name == string(filepath.Separator) {
			uc.removeTemp(ctx, dir)
			return "", "", nil, fmt.Errorf("invalid attachment name %q", att.Name)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, att.Data, 0o600); err != nil {
			uc.removeTemp(ctx, dir)
			return "", "", nil, fmt.Errorf("failed to write attachment %s: %w", name, err)
		}
		paths = append(paths, path)

		placeholder := "[attachment:" + att.Name + "]"
		if strings.Contains(message, placeholder) {
			message = strings.ReplaceAll(message, placeholder, path)
		} else {
			trailing = append(trailing, path)
		}
	}

	if len(trailing) > 0 {
		message += "\n\nAttached files:\n- " + strings.Join(trailing, "\n- ")
	}
	return message, dir, paths, nil
}

// removeTemp deletes one exchange's attachment directory.
func (uc *implUseCase) removeTemp(ctx context.Context, dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		uc.l.Warnf(ctx, "Failed to remove temp dir %s: %v", dir, err)
	}
}
