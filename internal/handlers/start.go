package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const welcomeText = `⛪ *나주교회 일정 알림봇입니다!*

교회 일정을 확인하고 시작 전에 알림을 받을 수 있습니다.

*명령어:*
• /today - 오늘 일정
• /date <YYYY-MM-DD> - 특정 날짜 일정
• /month [YYYY-MM] - 월간 일정
• /help - 도움말

/today 로 시작해 보세요!`

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		logger: logger,
	}
}

// Handle processes the /start command
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := sendMarkdown(bot, message.Chat.ID, welcomeText); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent start message")

	return nil
}
