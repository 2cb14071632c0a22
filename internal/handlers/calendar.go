package handlers

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/service"
)

var monthArgRegex = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)

// sendMarkdown sends text to chatID with Markdown formatting.
func sendMarkdown(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// TodayHandler – /today
// ---------------------------------------------------------------------------

// TodayHandler shows today's events.
type TodayHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTodayHandler creates a new TodayHandler.
func NewTodayHandler(svc *service.Service, logger *logrus.Logger) *TodayHandler {
	return &TodayHandler{svc: svc, logger: logger}
}

// Reply builds the answer to /today.
func (h *TodayHandler) Reply(args []string) string {
	today := h.svc.Today()
	return service.FormatAgenda(today, h.svc.Occurrences(today, today))
}

// Handle processes the /today command.
func (h *TodayHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := sendMarkdown(bot, message.Chat.ID, h.Reply(args)); err != nil {
		return err
	}
	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent today's agenda")
	return nil
}

// ---------------------------------------------------------------------------
// DateHandler – /date <YYYY-MM-DD>
// ---------------------------------------------------------------------------

// DateHandler shows the events of one day.
type DateHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDateHandler creates a new DateHandler.
func NewDateHandler(svc *service.Service, logger *logrus.Logger) *DateHandler {
	return &DateHandler{svc: svc, logger: logger}
}

// Reply builds the answer to /date, or a usage hint for bad input.
func (h *DateHandler) Reply(args []string) string {
	if len(args) == 0 {
		return "❌ 날짜를 입력해주세요.\n\n*사용법:* `/date 2025-10-01`"
	}
	day, err := datecodec.Unbounded.FromPersisted(args[0])
	if err != nil {
		return "❌ 날짜 형식이 올바르지 않습니다.\n`YYYY-MM-DD` 형식으로 입력해주세요."
	}
	return service.FormatAgenda(day, h.svc.Occurrences(day, day))
}

// Handle processes the /date command.
func (h *DateHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := sendMarkdown(bot, message.Chat.ID, h.Reply(args)); err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"args":    args,
	}).Info("Sent day agenda")
	return nil
}

// ---------------------------------------------------------------------------
// MonthHandler – /month [YYYY-MM]
// ---------------------------------------------------------------------------

// MonthHandler shows a month overview, the current month by default.
type MonthHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewMonthHandler creates a new MonthHandler.
func NewMonthHandler(svc *service.Service, logger *logrus.Logger) *MonthHandler {
	return &MonthHandler{svc: svc, logger: logger}
}

// Reply builds the answer to /month.
func (h *MonthHandler) Reply(args []string) string {
	today := h.svc.Today()
	year, month := today.Year, today.Month

	if len(args) > 0 {
		m := monthArgRegex.FindStringSubmatch(args[0])
		if m == nil {
			return "❌ 월 형식이 올바르지 않습니다.\n*사용법:* `/month 2025-10`"
		}
		year, _ = strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm < 1 || mm > 12 {
			return "❌ 월은 1부터 12 사이여야 합니다."
		}
		month = time.Month(mm)
	}

	first, last := datecodec.MonthBounds(year, month)
	return service.FormatMonth(year, month, h.svc.Occurrences(first, last))
}

// Handle processes the /month command.
func (h *MonthHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if err := sendMarkdown(bot, message.Chat.ID, h.Reply(args)); err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"args":    args,
	}).Info("Sent month overview")
	return nil
}
