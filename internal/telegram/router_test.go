package telegram

import (
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandler struct{}

func (nopHandler) Handle(*tgbotapi.BotAPI, *tgbotapi.Message, []string) error { return nil }

func command(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestRoute(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := NewRouter(logger)
	r.RegisterCommand("date", nopHandler{})

	name, handler, args, ok := r.route(command("/date 2025-10-01", 5))
	require.True(t, ok)
	assert.Equal(t, "date", name)
	assert.NotNil(t, handler)
	assert.Equal(t, []string{"2025-10-01"}, args)

	name, handler, _, ok = r.route(command("/date@churchcal_bot", 19))
	require.True(t, ok)
	assert.Equal(t, "date", name)
	assert.NotNil(t, handler)

	_, handler, _, ok = r.route(command("/weather", 8))
	assert.True(t, ok)
	assert.Nil(t, handler)

	_, _, _, ok = r.route(&tgbotapi.Message{Text: "안녕하세요", Chat: &tgbotapi.Chat{ID: 42}})
	assert.False(t, ok)
}
