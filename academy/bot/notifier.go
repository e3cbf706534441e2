package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/iteachbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ErrNoAdmin is returned when no administrator chat is configured.
var ErrNoAdmin = errors.New("bot: admin chat is not configured")

// messenger is the part of *tele.Bot the notifier needs.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AdminNotifier sends registration summaries to the administrator chat.
// Sends are synchronous so the caller can log the outcome; failures are not retried.
type AdminNotifier struct {
	api     messenger
	adminID int64
}

// NewAdminNotifier builds a notifier over api.
func NewAdminNotifier(api messenger, adminID int64) *AdminNotifier {
	return &AdminNotifier{api: api, adminID: adminID}
}

// NotifyAdmin delivers text as legacy Markdown.
func (n *AdminNotifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.adminID == 0 {
		return ErrNoAdmin
	}
	start := time.Now()
	_, err := n.api.Send(tele.ChatID(n.adminID), text, &tele.SendOptions{
		ParseMode:             tele.ModeMarkdown,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("notify admin: %w", err)
	}
	logger.Info(ctx, "notify", "admin.notify",
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
