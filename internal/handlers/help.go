package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const helpText = `📚 *도움말*

*일정 조회:*
• /today - 오늘 일정
• /date 2025-10-01 - 해당 날짜 일정
• /month - 이번 달 일정
• /month 2025-11 - 해당 월 일정

*알림:*
알림이 설정된 일정은 시작 전에 이 채팅으로 알려 드립니다.
매일 아침 그날의 일정을 보내 드립니다.

_일정 추가와 엑셀 가져오기는 웹에서 할 수 있습니다._`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := sendMarkdown(bot, message.Chat.ID, helpText); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
