package notify

import (
	"context"
	"fmt"
	"strings"

	"ai-task-orchestrator/pkg/telegram"
)

// TelegramNotifier delivers notifications as Telegram messages. Recipients
// are mapped to chat ids through configuration.
type TelegramNotifier struct {
	bot     *telegram.Bot
	chatIDs map[string]int64
}

func NewTelegramNotifier(bot *telegram.Bot, chatIDs map[string]int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatIDs: chatIDs}
}

func (t *TelegramNotifier) Send(ctx context.Context, n Notification) error {
	chatID, ok := t.chatIDs[n.UserID]
	if !ok {
		return fmt.Errorf("no telegram chat configured for user %s", n.UserID)
	}
	return t.bot.SendMessageWithMode(chatID, formatNotification(n), "Markdown")
}

func formatNotification(n Notification) string {
	var b strings.Builder
	b.WriteString("*")
	b.WriteString(n.Title)
	b.WriteString("*")
	if n.Body != "" {
		b.WriteString("\n")
		b.WriteString(n.Body)
	}
	if n.TaskID != "" {
		fmt.Fprintf(&b, "\nTask: `%s`", n.TaskID)
	}
	if n.ConversationID != "" {
		fmt.Fprintf(&b, "\nConversation: `%s`", n.ConversationID)
	}
	return b.String()
}
