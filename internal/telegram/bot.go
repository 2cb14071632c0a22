package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// notifyAttempts bounds delivery retries of one notification.
const notifyAttempts = 3

// Bot wraps the Telegram bot API. Notifications go to one configured chat.
type Bot struct {
	api        *tgbotapi.BotAPI
	logger     *logrus.Logger
	router     *Router
	notifyChat int64
}

// NewBot creates a new Telegram bot instance. notifyChat may be 0 when
// reminders are not delivered.
func NewBot(token string, notifyChat int64, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:        api,
		logger:     logger,
		router:     NewRouter(logger),
		notifyChat: notifyChat,
	}, nil
}

// Start starts the bot with long polling and blocks until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	// Delete webhook if exists and use polling
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate processes incoming updates
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	if update.Message != nil {
		b.router.HandleMessage(b.api, update.Message)
	}
}

// SendMessage sends a Markdown message to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Notify sends text to the notification chat, retrying transient failures
// with exponential backoff. It matches service.ReminderCallback.
func (b *Bot) Notify(text string) {
	if b.notifyChat == 0 {
		b.logger.Debug("No notification chat configured, dropping message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backoff := retry.WithMaxRetries(notifyAttempts-1, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := b.SendMessage(b.notifyChat, text); err != nil {
			b.logger.WithError(err).Debug("Notification attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		b.logger.WithError(err).WithField("chat_id", b.notifyChat).Error("Failed to deliver notification")
	}
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}
