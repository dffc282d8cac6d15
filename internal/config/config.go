// Package config loads the service settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"

	// DevAdminToken is only accepted outside production.
	DevAdminToken = "mock-token"
)

type Config struct {
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DataFile     string `mapstructure:"DATA_FILE"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`

	AdminToken         string `mapstructure:"ADMIN_TOKEN"`
	ResumeBaseURL      string `mapstructure:"RESUME_BASE_URL"`
	MaxUploadBytes     int64  `mapstructure:"MAX_UPLOAD_BYTES"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	TrustProxy         bool   `mapstructure:"TRUST_PROXY"`

	// Optional infrastructure. Empty means the feature is off.
	RedisURL    string `mapstructure:"REDIS_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	// Notifier only.
	MailHost          string `mapstructure:"MAIL_HOST"`
	MailPort          int    `mapstructure:"MAIL_PORT"`
	MailUser          string `mapstructure:"MAIL_USER"`
	MailPass          string `mapstructure:"MAIL_PASS"`
	MailFrom          string `mapstructure:"MAIL_FROM"`
	AdminNotifyEmails string `mapstructure:"ADMIN_NOTIFY_EMAILS"`
	AdminURL          string `mapstructure:"ADMIN_URL"`
	KommoAPIToken     string `mapstructure:"KOMMO_API_TOKEN"`
	KommoBaseURL      string `mapstructure:"KOMMO_BASE_URL"`
}

// Load reads .env when present, then the process environment, which wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", StoreFile)
	v.SetDefault("DATA_FILE", "data/leads.json")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("RESUME_BASE_URL", "https://example.com/resumes")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MAIL_HOST", "")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USER", "")
	v.SetDefault("MAIL_PASS", "")
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("ADMIN_NOTIFY_EMAILS", "")
	v.SetDefault("ADMIN_URL", "")
	v.SetDefault("KOMMO_API_TOKEN", "")
	v.SetDefault("KOMMO_BASE_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case StoreMemory:
	case StoreFile:
		if c.DataFile == "" {
			return errors.New("config: DATA_FILE must be set for the file store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.AdminToken == "" {
		if c.IsProduction() {
			return errors.New("config: ADMIN_TOKEN must be set when APP_ENV=production")
		}
		c.AdminToken = DevAdminToken
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("config: RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func (c *Config) AdminEmails() []string {
	return splitList(c.AdminNotifyEmails)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
