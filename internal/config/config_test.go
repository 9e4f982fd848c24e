package config

import (
	"testing"
	"time"

	pkgconfig "feastiq/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("MAIL_USERNAME", "bookings@feastiq.com")
	t.Setenv("MAIL_PASSWORD", "app-password")

	var cfg Config
	require.NoError(t, pkgconfig.LoadConfigs(&cfg))

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, "admin123", cfg.AdminConfig.Password)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "reservations.db", cfg.DSN)
	assert.Equal(t, "smtp.gmail.com", cfg.Server)
	assert.Equal(t, 587, cfg.Port)
	assert.True(t, cfg.UseTLS)
	assert.Equal(t, 24*time.Hour, cfg.TTL)
	assert.Equal(t, 8, cfg.MaxAttempts)
	assert.True(t, cfg.Synchronous)
	assert.False(t, cfg.Disabled)
	assert.NoError(t, cfg.Validate())
}

func TestSigningKey(t *testing.T) {
	assert.Equal(t, "legacy", SessionConfig{LegacySecret: "legacy"}.SigningKey())
	assert.Equal(t, "new", SessionConfig{Secret: "new", LegacySecret: "legacy"}.SigningKey())
	assert.Empty(t, SessionConfig{}.SigningKey())
}

func TestMailConfig(t *testing.T) {
	cfg := MailConfig{Username: "bookings@feastiq.com"}
	assert.False(t, cfg.Enabled())
	assert.Equal(t, "bookings@feastiq.com", cfg.OperatorAddress())

	cfg.Password = "app-password"
	cfg.Operator = "hall@feastiq.com"
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "hall@feastiq.com", cfg.OperatorAddress())
}

func TestValidate(t *testing.T) {
	cfg := Config{
		OutboxConfig: OutboxConfig{PollInterval: time.Minute, MaxAttempts: 1},
		MailConfig:   MailConfig{Synchronous: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "MAIL_USERNAME")

	cfg.SessionConfig = SessionConfig{LegacySecret: "flask-key", TTL: time.Hour}
	cfg.MailConfig = MailConfig{Username: "u", Password: "p", Synchronous: true}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MailCredentials(t *testing.T) {
	cfg := Config{
		SessionConfig: SessionConfig{Secret: "s", TTL: time.Hour},
		OutboxConfig:  OutboxConfig{PollInterval: time.Minute, MaxAttempts: 8},
	}

	// Без учетных данных релея сервис не стартует
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_USERNAME and MAIL_PASSWORD are required")

	cfg.MailConfig = MailConfig{Username: "bookings@feastiq.com"}
	assert.Error(t, cfg.Validate())

	// Явное отключение подтверждений
	cfg.MailConfig = MailConfig{Disabled: true, Synchronous: true}
	assert.NoError(t, cfg.Validate())

	cfg.MailConfig = MailConfig{Username: "bookings@feastiq.com", Password: "app-password"}
	assert.NoError(t, cfg.Validate())
}

func TestTelegramAndSheetEnabled(t *testing.T) {
	assert.False(t, TelegramConfig{BotToken: "token", Admins: "  "}.Enabled())
	assert.True(t, TelegramConfig{BotToken: "token", Admins: "1,2"}.Enabled())
	assert.False(t, GoogleSheetConfig{SheetID: "id"}.Enabled())
	assert.True(t, GoogleSheetConfig{SheetID: "id", CredentialsBase64: "e30="}.Enabled())
}
