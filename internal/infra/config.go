package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Telegram transport.
	BotToken        string        `env:"BOT_TOKEN"`
	TelegramBaseURL string        `env:"TELEGRAM_BASE_URL" envDefault:"https://api.telegram.org"`
	UpdateTimeout   time.Duration `env:"TELEGRAM_UPDATE_TIMEOUT" envDefault:"30s"`

	// Kling video-generation API.
	KlingAccessKey string        `env:"KLING_ACCESS_KEY"`
	KlingSecretKey string        `env:"KLING_SECRET_KEY"`
	KlingBaseURL   string        `env:"KLING_BASE_URL" envDefault:"https://api-singapore.klingai.com"`
	TokenTTL       time.Duration `env:"KLING_TOKEN_TTL" envDefault:"30m"`
	PollInterval   time.Duration `env:"KLING_POLL_INTERVAL" envDefault:"5s"`
	PollTimeout    time.Duration `env:"KLING_POLL_TIMEOUT" envDefault:"5m"`

	// Ops HTTP surface.
	OpsPort          string        `env:"OPS_PORT" envDefault:"8081"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"30s"`
	DefaultLocale string        `env:"DEFAULT_LOCALE" envDefault:"en"`
}

// LoadConfig loads configuration from environment variables and applies defaults
// where needed. All three secrets are mandatory: the bot cannot run partially.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	if cfg.KlingAccessKey == "" {
		return nil, fmt.Errorf("KLING_ACCESS_KEY is required")
	}

	if cfg.KlingSecretKey == "" {
		return nil, fmt.Errorf("KLING_SECRET_KEY is required")
	}

	return &cfg, nil
}
