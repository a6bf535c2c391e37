package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/qdrantstore"
)

var (
	queryTopK     int
	queryCategory string
	querySource   string
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question from the vectorized document collection",
	Long: `
The query command embeds the question, searches the Qdrant collection
for the most relevant document chunks, and asks the configured LLM to
synthesize an answer grounded in those chunks.

Examples:
  bmasterai query "How do I rotate the API keys?"
  bmasterai query --top-k 10 "What does the cleanup runner delete?"
  bmasterai query --category operations "How do I restart the workers?"
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "Number of context documents to retrieve (0 = use config default)")
	queryCmd.Flags().StringVar(&queryCategory, "category", "", "Only search documents with this payload category")
	queryCmd.Flags().StringVar(&querySource, "source", "", "Only search documents from this source path")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if queryTopK > 0 {
		cfg.TopK = queryTopK
	}

	ctx := cmd.Context()
	service, err := newQueryService(ctx, cfg)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	var filter *qdrantstore.Filter
	if queryCategory != "" || querySource != "" {
		filter = &qdrantstore.Filter{Category: queryCategory, Source: querySource}
	}
	result, err := service.QueryFiltered(ctx, question, filter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, source := range result.Sources {
			fmt.Printf("  [%d] %s (score %.3f)\n", i+1, source.Document.Title, source.Score)
		}
	}
	fmt.Printf("\nModel: %s, elapsed: %s\n", result.Model, result.Elapsed.Round(time.Millisecond))
	return nil
}
