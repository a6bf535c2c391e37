package config

import (
	"time"

	env "github.com/netflix/go-env"
)

// AlertNotifyConfig holds the delivery targets for fired alerts. Every
// field is optional so long-running commands can start the evaluator with
// whatever integrations are configured.
type AlertNotifyConfig struct {
	SlackWebhookURL  string        `env:"SLACK_WEBHOOK_URL,required=false"`
	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN,required=false"`
	TelegramChatID   int64         `env:"TELEGRAM_CHAT_ID,required=false"`
	TelegramTimeout  time.Duration `env:"TELEGRAM_TIMEOUT,default=30s"`
	Interval         time.Duration `env:"BMASTERAI_ALERT_INTERVAL,default=1m"`
}

// LoadAlertNotify loads alert delivery settings from environment variables.
func LoadAlertNotify() (*AlertNotifyConfig, error) {
	var cfg AlertNotifyConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, err
	}
	if cfg.TelegramTimeout <= 0 {
		cfg.TelegramTimeout = 30 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &cfg, nil
}
