package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bmasterai",
	Short: "BMasterAI - agent monitoring and integration toolkit",
	Long: `BMasterAI is a CLI tool and library for running LLM agents with
structured monitoring: JSONL event logging, SQLite usage metrics, alert
notifications, and integrations with Slack, Telegram, Qdrant, GitHub,
Alpha Vantage, AWS, and MCP clients.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(vectorizeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(slackBotCmd)
	rootCmd.AddCommand(telegramCmd)
	rootCmd.AddCommand(mcpServerCmd)
	rootCmd.AddCommand(analyzeRepoCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(costsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dashboardCmd)
}
