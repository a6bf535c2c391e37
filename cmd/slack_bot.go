package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/slackconn"
)

var slackBotCmd = &cobra.Command{
	Use:   "slack-bot",
	Short: "Run the Slack Socket Mode bot answering questions over RAG",
	Long: `
Start a Slack bot in Socket Mode. The bot answers @mentions and direct
messages by running the question through the RAG pipeline (Qdrant
search plus the configured LLM) and replies in thread with Block Kit
formatting.

Requires SLACK_BOT_TOKEN (xoxb-) and SLACK_APP_TOKEN (xapp-).
`,
	RunE: runSlackBot,
}

func runSlackBot(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	slackCfg, err := appconfig.LoadSlack()
	if err != nil {
		return fmt.Errorf("failed to load Slack configuration: %w", err)
	}
	if slackCfg.AppToken == "" {
		return fmt.Errorf("SLACK_APP_TOKEN is required for Socket Mode")
	}
	if !slackCfg.SocketMode {
		return fmt.Errorf("the bot only supports Socket Mode, set SLACK_SOCKET_MODE=true")
	}
	if slackCfg.MaxResults > 0 {
		cfg.TopK = slackCfg.MaxResults
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := initObservability(cfg)
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	service, err := newQueryService(ctx, cfg)
	if err != nil {
		return err
	}

	events, err := newEventLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	logger := log.New(os.Stdout, "[SlackBot] ", log.LstdFlags)
	processor := slackconn.NewProcessor(slackconn.ResponderFunc(service.Answer), events)
	processor.SetResponseTimeout(slackCfg.ResponseTimeout)
	processor.SetThreading(slackCfg.EnableThreading)

	client := slack.New(slackCfg.BotToken, slack.OptionAppLevelToken(slackCfg.AppToken))
	bot, err := slackconn.NewSocketBot(client, slackCfg.AppToken, processor, logger)
	if err != nil {
		return fmt.Errorf("failed to create Slack bot: %w", err)
	}
	bot.SetRateLimiter(slackconn.NewRateLimiter(
		slackCfg.RateUserPerMinute,
		slackCfg.RateChannelPerMinute,
		slackCfg.RateGlobalPerMinute,
	))

	if _, err := startAlertEvaluator(ctx, cfg, events, logger); err != nil {
		return err
	}

	logger.Println("Slack bot starting, press Ctrl+C to stop")
	if err := bot.Start(ctx); err != nil {
		return fmt.Errorf("slack bot stopped with error: %w", err)
	}
	logger.Println("Slack bot stopped")
	return nil
}
