package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/travis-burmaster/bmasterai/internal/alphavantage"
	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
)

var quoteDays int

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL",
	Short: "Fetch a stock quote from Alpha Vantage",
	Long: `
Fetch the latest quote for a stock symbol, optionally with recent
daily bars. Requires ALPHA_VANTAGE_API_KEY.

Examples:
  bmasterai quote AAPL
  bmasterai quote MSFT --days 5
`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().IntVar(&quoteDays, "days", 0, "Also print the last N daily bars")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := alphavantage.NewClient(cfg.AlphaVantageAPIKey)
	if err != nil {
		return err
	}

	symbol := strings.ToUpper(args[0])
	ctx := cmd.Context()

	quote, err := client.GetQuote(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to fetch quote: %w", err)
	}

	fmt.Printf("%s  %.2f  (%+.2f, %s)  volume %d  as of %s\n",
		quote.Symbol, quote.Price, quote.Change, quote.ChangePercent, quote.Volume, quote.LatestDay)

	if quoteDays > 0 {
		bars, err := client.GetDailySeries(ctx, symbol, quoteDays)
		if err != nil {
			return fmt.Errorf("failed to fetch daily series: %w", err)
		}
		fmt.Println()
		for _, bar := range bars {
			fmt.Printf("  %s  open %.2f  high %.2f  low %.2f  close %.2f  volume %d\n",
				bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
		}
	}
	return nil
}
