package config

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://:memory:")
	t.Setenv("APP_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"SESSION_SECRET", "PORT", "LOG_LEVEL", "ENV", "TIMEZONE", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "DIGEST_SCHEDULE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0 7 * * *", cfg.DigestSchedule)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.TelegramEnabled())
	assert.True(t, cfg.GeneratedSecret)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Len(t, cfg.SessionSecret, 72)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_PASSWORD", "secret")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	setRequired(t)
	t.Setenv("TELEGRAM_CHAT_ID", "group")
	_, err = Load()
	assert.ErrorContains(t, err, "TELEGRAM_CHAT_ID")

	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "TIMEZONE")

	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://naju.example, ,https://admin.example")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://naju.example", "https://admin.example"}, cfg.CORSOrigins)
	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.True(t, cfg.IsProduction())
}

func TestNewDatabaseSQLite(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := NewDatabase("sqlite://"+filepath.Join(t.TempDir(), "churchcal.db"), logger)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", db.Driver())
	assert.NotNil(t, db.Events())
	assert.NoError(t, db.Migrate("migrations"))
}
