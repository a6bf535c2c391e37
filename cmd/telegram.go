package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
	"github.com/travis-burmaster/bmasterai/internal/telegram"
)

var (
	telegramChatID   int64
	telegramText     string
	telegramDocument string
	telegramPhoto    string
	telegramCaption  string
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Send a message, document, or photo through the Telegram bot",
	Long: `
Send content to a Telegram chat using the bot configured with
TELEGRAM_BOT_TOKEN. Long messages are split into chunks that respect
the Telegram 4096-character limit.

Examples:
  bmasterai telegram --chat-id 12345 --text "deploy finished"
  bmasterai telegram --chat-id 12345 --document report.pdf --caption "weekly report"
  bmasterai telegram --chat-id 12345 --photo chart.png
`,
	RunE: runTelegram,
}

func init() {
	telegramCmd.Flags().Int64Var(&telegramChatID, "chat-id", 0, "Target chat ID (defaults to TELEGRAM_CHAT_ID)")
	telegramCmd.Flags().StringVarP(&telegramText, "text", "t", "", "Message text to send")
	telegramCmd.Flags().StringVar(&telegramDocument, "document", "", "Path of a document to send")
	telegramCmd.Flags().StringVar(&telegramPhoto, "photo", "", "Path of a photo to send")
	telegramCmd.Flags().StringVar(&telegramCaption, "caption", "", "Caption for a document or photo")
}

func runTelegram(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.LoadTelegram()
	if err != nil {
		return fmt.Errorf("failed to load Telegram configuration: %w", err)
	}

	client, err := telegram.NewClient(cfg.BotToken, cfg.Timeout)
	if err != nil {
		return err
	}
	client.SetParseMode(cfg.ParseMode)

	chatID := telegramChatID
	if chatID == 0 {
		chatID = cfg.DefaultChatID
	}
	if chatID == 0 {
		return fmt.Errorf("no chat id: pass --chat-id or set TELEGRAM_CHAT_ID")
	}

	if telegramText == "" && telegramDocument == "" && telegramPhoto == "" {
		return fmt.Errorf("nothing to send: pass --text, --document, or --photo")
	}

	ctx := cmd.Context()
	monitor.RecordInvocation(monitor.ModeTelegram)

	if telegramText != "" {
		sent, err := client.SendMessage(ctx, chatID, telegramText)
		if err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
		fmt.Printf("Sent %d message(s) to chat %d\n", len(sent), chatID)
	}

	if telegramDocument != "" {
		if err := sendFile(cmd, client, chatID, telegramDocument, true); err != nil {
			return err
		}
	}
	if telegramPhoto != "" {
		if err := sendFile(cmd, client, chatID, telegramPhoto, false); err != nil {
			return err
		}
	}
	return nil
}

func sendFile(cmd *cobra.Command, client *telegram.Client, chatID int64, path string, asDocument bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(path)
	if asDocument {
		if _, err := client.SendDocument(cmd.Context(), chatID, name, file, telegramCaption); err != nil {
			return fmt.Errorf("failed to send document: %w", err)
		}
		fmt.Printf("Sent document %s to chat %d\n", name, chatID)
		return nil
	}

	if _, err := client.SendPhoto(cmd.Context(), chatID, name, file, telegramCaption); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	fmt.Printf("Sent photo %s to chat %d\n", name, chatID)
	return nil
}
