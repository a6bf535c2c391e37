package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/awsops"
)

var (
	cleanupPrefix string
	cleanupDryRun bool
	cleanupYes    bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete AWS resources whose names match a prefix",
	Long: `
Tear down demo or test resources: S3 buckets (emptied first) and
Secrets Manager secrets whose names start with the given prefix.
Failures on individual resources are reported without stopping the
run. Use --dry-run to preview what would be deleted.

Examples:
  bmasterai cleanup --prefix bmasterai-demo- --dry-run
  bmasterai cleanup --prefix bmasterai-demo- --yes
`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupPrefix, "prefix", "", "Resource name prefix to match (required)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "List matching resources without deleting")
	cleanupCmd.Flags().BoolVar(&cleanupYes, "yes", false, "Skip the confirmation prompt")
	_ = cleanupCmd.MarkFlagRequired("prefix")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !cleanupDryRun && !cleanupYes {
		fmt.Printf("This will DELETE all S3 buckets and secrets with prefix %q. Type 'yes' to continue: ", cleanupPrefix)
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "yes" {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	ctx := cmd.Context()
	cleaner, err := awsops.NewCleaner(ctx, cfg.AWSRegion, cleanupPrefix, cleanupDryRun)
	if err != nil {
		return err
	}

	result, err := cleaner.Run(ctx)
	if result != nil {
		for _, bucket := range result.BucketsDeleted {
			fmt.Printf("bucket deleted: %s\n", bucket)
		}
		for _, secret := range result.SecretsDeleted {
			fmt.Printf("secret deleted: %s\n", secret)
		}
		for _, skipped := range result.Skipped {
			fmt.Printf("skipped: %s\n", skipped)
		}
		fmt.Printf("Buckets: %d, objects: %d, secrets: %d, skipped: %d\n",
			len(result.BucketsDeleted), result.ObjectsDeleted, len(result.SecretsDeleted), len(result.Skipped))
		for _, runErr := range result.Errors {
			fmt.Printf("error: %v\n", runErr)
		}
	}
	return err
}
