package cmd

import (
	"context"
	"fmt"
	"log"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/slackconn"
	"github.com/travis-burmaster/bmasterai/internal/telegram"
)

// buildAlertNotifiers assembles delivery targets from whatever integrations
// the environment configures. An empty slice is not an error; the evaluator
// still logs alert events to the monitor log.
func buildAlertNotifiers(notify *appconfig.AlertNotifyConfig) ([]monitor.Notifier, error) {
	var notifiers []monitor.Notifier

	if notify.SlackWebhookURL != "" {
		slackNotifier, err := slackconn.NewWebhookNotifier(notify.SlackWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build slack notifier: %w", err)
		}
		notifiers = append(notifiers, slackNotifier)
	}

	if notify.TelegramBotToken != "" && notify.TelegramChatID != 0 {
		telegramClient, err := telegram.NewClient(notify.TelegramBotToken, notify.TelegramTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to build telegram notifier: %w", err)
		}
		telegramClient.DefaultChatID = notify.TelegramChatID
		notifiers = append(notifiers, telegramClient)
	}

	return notifiers, nil
}

// startAlertEvaluator loads alert rules from cfg.AlertRulesPath and runs the
// evaluation loop until ctx is cancelled. It reports whether the loop was
// started; an unset rules path is not an error.
func startAlertEvaluator(ctx context.Context, cfg *appconfig.Config, events *monitor.Logger, logger *log.Logger) (bool, error) {
	if cfg.AlertRulesPath == "" {
		return false, nil
	}

	rules, err := monitor.LoadAlertRules(cfg.AlertRulesPath)
	if err != nil {
		return false, fmt.Errorf("failed to load alert rules: %w", err)
	}
	if len(rules) == 0 {
		logger.Printf("alert rules file %s has no rules, evaluator not started", cfg.AlertRulesPath)
		return false, nil
	}

	notify, err := appconfig.LoadAlertNotify()
	if err != nil {
		return false, fmt.Errorf("failed to load alert notify settings: %w", err)
	}
	notifiers, err := buildAlertNotifiers(notify)
	if err != nil {
		return false, err
	}

	if monitor.GetStore() == nil {
		if err := monitor.Init(); err != nil {
			return false, fmt.Errorf("failed to open metrics store: %w", err)
		}
	}
	evaluator := monitor.NewAlertEvaluator(monitor.GetStore(), events, rules, notify.Interval)
	for _, n := range notifiers {
		evaluator.AddNotifier(n)
	}

	go evaluator.Run(ctx)
	logger.Printf("alert evaluator running with %d rule(s) and %d notifier(s)", len(rules), len(notifiers))
	return true, nil
}
