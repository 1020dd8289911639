// Package notify delivers alerts about high-risk health entries.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"stomatrack/internal/models"
)

// Notifier is told about every entry classified as high risk.
type Notifier interface {
	NotifyHighRisk(ctx context.Context, entry *models.HealthEntry) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) NotifyHighRisk(context.Context, *models.HealthEntry) error { return nil }

// sender is the subset of *tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts alerts to a single configured chat.
type TelegramNotifier struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier authorizes the bot token and returns a notifier for chatID.
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}

	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &TelegramNotifier{api: botAPI, chatID: chatID, logger: logger}, nil
}

// NotifyHighRisk sends a short alert describing the entry.
func (n *TelegramNotifier) NotifyHighRisk(ctx context.Context, entry *models.HealthEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatAlert(entry))
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send Telegram alert",
			zap.String("entry_id", entry.ID),
			zap.Error(err))
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}

	n.logger.Info("High-risk alert sent",
		zap.String("entry_id", entry.ID),
		zap.String("user_id", entry.UserID))
	return nil
}

func formatAlert(entry *models.HealthEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ High-risk %s entry at %s\n\n", entry.Category, entry.Timestamp.UTC().Format("2006-01-02 15:04 MST"))
	sb.WriteString(entry.Description)
	if len(entry.AIFlags) > 0 {
		fmt.Fprintf(&sb, "\n\nFlags: %s", strings.Join(entry.AIFlags, ", "))
	}
	for _, insight := range entry.Insights {
		fmt.Fprintf(&sb, "\n• %s", insight)
	}
	fmt.Fprintf(&sb, "\n\nConfidence: %.0f%%", entry.ConfidenceScore*100)
	return sb.String()
}
