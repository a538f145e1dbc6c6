package notify

import "context"

// Notification is one push notice addressed to a user.
type Notification struct {
	UserID         string            // Recipient
	Title          string            // Short headline
	Body           string            // Optional detail line
	TaskID         string            // Task the notice is about ("" for agent notices)
	ConversationID string            // Conversation that triggered the notice
	Metadata       map[string]string // Free-form extras for the delivery layer
}

// Queue accepts notifications for asynchronous delivery. Enqueue never
// blocks the caller and never returns an error; delivery failures are
// logged by the implementation.
type Queue interface {
	Enqueue(ctx context.Context, n Notification)
}

// Notifier delivers one notification synchronously.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
