package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/llm"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

var (
	chatSystemPrompt string
	chatProvider     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session with the configured LLM provider",
	Long: `
Start an interactive chat session against the provider selected by
LLM_PROVIDER (anthropic, openai, bedrock, or gemini). The conversation
history is kept for the whole session and every exchange is recorded in
the monitor event log.

Examples:
  bmasterai chat
  bmasterai chat --provider openai
  bmasterai chat --system "You are a terse code reviewer."
`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSystemPrompt, "system", "s", "", "System prompt for the session")
	chatCmd.Flags().StringVarP(&chatProvider, "provider", "p", "", "Override LLM_PROVIDER for this session")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if chatProvider != "" {
		cfg.LLMProvider = chatProvider
	}

	ctx := cmd.Context()
	client, err := newChatClient(ctx, cfg)
	if err != nil {
		return err
	}

	events, err := newEventLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	log.Printf("Chat ready, model: %s", client.ModelID())
	fmt.Println("=== BMasterAI Chat Session ===")
	fmt.Println("Type 'exit' or 'quit' to end the session")
	fmt.Println()

	var history []llm.Message
	if chatSystemPrompt != "" {
		history = append(history, llm.Message{Role: llm.RoleSystem, Content: chatSystemPrompt})
	}

	chatLog := events.ForAgent("chat-cli")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		monitor.RecordInvocation(monitor.ModeChat)
		history = append(history, llm.Message{Role: llm.RoleUser, Content: input})

		reply, err := client.Chat(ctx, history)
		if err != nil {
			chatLog.Error("chat request failed", map[string]interface{}{"error": err.Error()})
			fmt.Printf("error: %v\n", err)
			// drop the failed turn so a retry does not duplicate it
			history = history[:len(history)-1]
			continue
		}

		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply.Text})
		chatLog.Log(monitor.EventLLMCall, "chat exchange", map[string]interface{}{
			"model":         reply.Model,
			"input_tokens":  reply.InputTokens,
			"output_tokens": reply.OutputTokens,
		})

		fmt.Println()
		fmt.Println(reply.Text)
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Println("Session ended.")
	return nil
}
