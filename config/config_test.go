package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{"PORT", "JWT_EXPIRY", "REMINDER_TIMEZONE", "REMINDER_WORKERS", "REMINDER_DEDUP_SCOPE",
		"REMINDER_WINDOW_START_DAYS", "REMINDER_WINDOW_END_DAYS", "REMINDER_SCHEDULE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "@every 24h", cfg.Reminders.Schedule)
	assert.Equal(t, 1, cfg.Reminders.WindowStartDays)
	assert.Equal(t, 4, cfg.Reminders.WindowEndDays)
	assert.Equal(t, "attendee", cfg.Reminders.DedupScope)
	assert.Equal(t, time.UTC, cfg.Reminders.Location)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("REMINDER_TIMEZONE", "America/New_York")
	t.Setenv("REMINDER_DEDUP_SCOPE", "Channel")
	t.Setenv("REMINDER_WORKERS", "8")
	t.Setenv("WHATSAPP_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "America/New_York", cfg.Reminders.Location.String())
	assert.Equal(t, "channel", cfg.Reminders.DedupScope)
	assert.Equal(t, 8, cfg.Reminders.Workers)
	assert.Equal(t, 3*time.Second, cfg.WhatsApp.Timeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("REMINDER_WORKERS", "many")
	t.Setenv("JWT_EXPIRY", "forever")
	t.Setenv("REMINDER_TIMEZONE", "Mars/Olympus")
	t.Setenv("REMINDER_DEDUP_SCOPE", "event")

	_, err := Load()
	require.Error(t, err)
	for _, key := range []string{"REMINDER_WORKERS", "JWT_EXPIRY", "REMINDER_TIMEZONE", "REMINDER_DEDUP_SCOPE"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, true, "warn").Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true, "debug").Debug("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
