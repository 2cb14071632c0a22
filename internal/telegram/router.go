package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	msgCommandFailed  = "❌ 명령을 처리하는 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	msgUnknownCommand = "❓ 알 수 없는 명령어입니다. /help 로 사용법을 확인하세요."
)

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// route resolves the handler of a command message. ok is false for plain
// text; handler is nil for unknown commands.
func (r *Router) route(message *tgbotapi.Message) (command string, handler CommandHandler, args []string, ok bool) {
	if message.Text == "" || !message.IsCommand() {
		return "", nil, nil, false
	}
	command = message.Command()
	return command, r.handlers[command], strings.Fields(message.CommandArguments()), true
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"message_id": message.MessageID,
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
		fields["username"] = message.From.UserName
	}

	command, handler, args, ok := r.route(message)
	if !ok {
		return
	}
	fields["command"] = command

	if handler == nil {
		r.logger.WithFields(fields).Warn("Unknown command")
		r.reply(bot, message.Chat.ID, msgUnknownCommand)
		return
	}

	r.logger.WithFields(fields).Info("Received command")
	if err := handler.Handle(bot, message, args); err != nil {
		r.logger.WithFields(fields).WithError(err).Error("Command handler failed")
		r.reply(bot, message.Chat.ID, msgCommandFailed)
	}
}

func (r *Router) reply(bot *tgbotapi.BotAPI, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger.WithError(err).Error("Failed to send reply")
	}
}
