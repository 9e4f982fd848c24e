package config

import (
	"errors"
	"strings"
	"time"
)

type Config struct {
	HTTPConfig
	SessionConfig
	AdminConfig
	DBConfig
	MailConfig
	OutboxConfig
	GoogleSheetConfig
	TelegramConfig

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":5000"`
	GinMode         string        `envconfig:"GIN_MODE" default:"release"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type SessionConfig struct {
	Secret       string        `envconfig:"SESSION_SECRET" masked:"true"`
	LegacySecret string        `envconfig:"FLASK_KEY" masked:"true"`
	TTL          time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SecureCookie bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`
}

// SigningKey возвращает ключ подписи cookie; SESSION_SECRET приоритетнее FLASK_KEY.
func (c SessionConfig) SigningKey() string {
	if c.Secret != "" {
		return c.Secret
	}
	return c.LegacySecret
}

type AdminConfig struct {
	// Общий пароль администратора. Пустое значение отключает вход по общему паролю.
	Password string `envconfig:"ADMIN_PASSWORD" default:"admin123" masked:"true"`
}

type DBConfig struct {
	Driver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"DB_DSN" default:"reservations.db" masked:"true"`
}

type MailConfig struct {
	Server      string        `envconfig:"MAIL_SERVER" default:"smtp.gmail.com"`
	Port        int           `envconfig:"MAIL_PORT" default:"587"`
	UseTLS      bool          `envconfig:"MAIL_USE_TLS" default:"true"`
	Username    string        `envconfig:"MAIL_USERNAME" masked:"true"`
	Password    string        `envconfig:"MAIL_PASSWORD" masked:"true"`
	Operator    string        `envconfig:"MAIL_OPERATOR" masked:"true"`
	Timeout     time.Duration `envconfig:"MAIL_TIMEOUT" default:"30s"`
	Synchronous bool          `envconfig:"MAIL_SYNCHRONOUS" default:"true"`
	// Явное отключение подтверждений; без него учетные данные релея обязательны.
	Disabled    bool          `envconfig:"MAIL_DISABLED" default:"false"`
	Restaurant  string        `envconfig:"RESTAURANT_NAME" default:"FeastIQ"`
}

// Enabled сообщает, настроены ли учетные данные почтового релея.
func (c MailConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

// OperatorAddress - адрес, получающий копию каждого подтверждения.
func (c MailConfig) OperatorAddress() string {
	if c.Operator != "" {
		return c.Operator
	}
	return c.Username
}

type OutboxConfig struct {
	PollInterval   time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"1m"`
	MaxAttempts    int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"8"`
	InitialBackoff time.Duration `envconfig:"OUTBOX_INITIAL_BACKOFF" default:"30s"`
	MaxBackoff     time.Duration `envconfig:"OUTBOX_MAX_BACKOFF" default:"1h"`
	BatchSize      int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
}

type GoogleSheetConfig struct {
	SheetID           string `envconfig:"SHEET_ID" masked:"true"`
	TabID             string `envconfig:"SHEET_TAB_ID" masked:"true"`
	CredentialsBase64 string `envconfig:"SHEET_CREDENTIALS_BASE64" masked:"true"`
	PauseMs           int    `envconfig:"SHEET_PAUSE_MS" default:"1000"`
	Columns           string `envconfig:"SHEET_COLUMNS"`
}

func (c GoogleSheetConfig) Enabled() bool {
	return c.SheetID != "" && c.CredentialsBase64 != ""
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" masked:"true"`
	Admins   string `envconfig:"TELEGRAM_ADMINS" masked:"true"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && strings.TrimSpace(c.Admins) != ""
}

// Validate проверяет настройки, без которых сервис не может принимать запросы.
func (c *Config) Validate() error {
	var errs []error
	if c.SigningKey() == "" {
		errs = append(errs, errors.New("SESSION_SECRET (or FLASK_KEY) is required"))
	}
	if c.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if c.MaxAttempts <= 0 {
		errs = append(errs, errors.New("OUTBOX_MAX_ATTEMPTS must be positive"))
	}
	if !c.MailConfig.Disabled && !c.MailConfig.Enabled() {
		errs = append(errs, errors.New("MAIL_USERNAME and MAIL_PASSWORD are required (set MAIL_DISABLED=true to run without confirmations)"))
	}
	return errors.Join(errs...)
}
