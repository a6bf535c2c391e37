package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/travis-burmaster/bmasterai/internal/awsops"
)

var (
	costsDays      int
	costsAccountID string
	costsBudgets   bool
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Report AWS spend by service for a recent period",
	Long: `
Query AWS Cost Explorer for unblended costs grouped by service and
print them sorted by amount. With --budgets the configured AWS
Budgets are listed as well (requires --account-id).

Examples:
  bmasterai costs
  bmasterai costs --days 7
  bmasterai costs --budgets --account-id 123456789012
`,
	RunE: runCosts,
}

func init() {
	costsCmd.Flags().IntVar(&costsDays, "days", 30, "Number of days to include in the report")
	costsCmd.Flags().StringVar(&costsAccountID, "account-id", "", "AWS account ID (needed for --budgets)")
	costsCmd.Flags().BoolVar(&costsBudgets, "budgets", false, "Also list AWS Budgets with actual spend")
}

func runCosts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := awsops.NewCostsClient(ctx, costsAccountID)
	if err != nil {
		return fmt.Errorf("failed to create Cost Explorer client: %w", err)
	}

	report, err := client.GetCostReport(ctx, costsDays)
	if err != nil {
		return fmt.Errorf("failed to fetch cost report: %w", err)
	}

	fmt.Printf("AWS costs %s to %s\n\n", report.Start, report.End)
	for _, svc := range report.Services {
		fmt.Printf("  %-40s %10.2f %s\n", svc.Service, svc.Amount, svc.Unit)
	}
	fmt.Printf("\n  %-40s %10.2f %s\n", "TOTAL", report.Total, report.Unit)

	if costsBudgets {
		budgets, err := client.GetBudgets(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch budgets: %w", err)
		}
		fmt.Println("\nBudgets:")
		for _, budget := range budgets {
			fmt.Printf("  %-32s %10.2f of %10.2f %s\n", budget.Name, budget.Actual, budget.Limit, budget.Unit)
		}
	}
	return nil
}
