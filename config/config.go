package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	LinkSecret string `env:"LINK_SECRET,required" validate:"required,min=32"`
	LinkTTLSec int    `env:"LINK_TTL_SEC" envDefault:"3600" validate:"min=60,max=604800"`

	SessionSecret   string `env:"SESSION_SECRET,required" validate:"required,min=32"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"24" validate:"min=1,max=720"`

	NeutralValidation bool `env:"NEUTRAL_VALIDATION" envDefault:"true"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	SMTPAddr     string `env:"SMTP_ADDR" envDefault:"localhost:25" validate:"required"`

	MailFromName  string `env:"MAIL_FROM_NAME"`
	MailFromEmail string `env:"MAIL_FROM_EMAIL" validate:"omitempty,email"`
	MailSubject   string `env:"MAIL_SUBJECT"`
	MailBodyHTML  string `env:"MAIL_BODY_HTML"`

	SiteName  string `env:"SITE_NAME" envDefault:"Maglink"`
	SiteEmail string `env:"SITE_EMAIL" validate:"omitempty,email"`

	AuditRetentionDays int `env:"AUDIT_RETENTION_DAYS" envDefault:"30" validate:"min=1,max=365"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) LinkTTL() time.Duration {
	return time.Duration(c.LinkTTLSec) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

// SecureCookies reports whether session cookies should carry the Secure
// flag. Local development runs over plain HTTP.
func (c *Config) SecureCookies() bool {
	return c.Env != "local"
}
