package config

import (
	"time"

	env "github.com/netflix/go-env"
)

// TelegramConfig holds Telegram Bot API settings.
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN,required=true"`
	// Default chat for notifications when no chat id is supplied per call
	DefaultChatID int64         `env:"TELEGRAM_CHAT_ID,required=false"`
	ParseMode     string        `env:"TELEGRAM_PARSE_MODE,default=HTML"`
	Timeout       time.Duration `env:"TELEGRAM_TIMEOUT,default=30s"`
}

// LoadTelegram loads Telegram configuration from environment variables.
func LoadTelegram() (*TelegramConfig, error) {
	var cfg TelegramConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &cfg, nil
}
