package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/ghclient"
)

var analyzeRepoCmd = &cobra.Command{
	Use:   "analyze-repo owner/repo",
	Short: "Clone a GitHub repository and summarize its structure",
	Long: `
Shallow-clone a GitHub repository and print a structural summary:
file counts by language, top-level entries, and the largest
directories. Private repositories require GITHUB_TOKEN.

Examples:
  bmasterai analyze-repo golang/go
  bmasterai analyze-repo myorg/private-repo
`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeRepo,
}

func runAnalyzeRepo(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	owner, repo, err := ghclient.ParseRepo(args[0])
	if err != nil {
		return err
	}

	analyzer := ghclient.NewAnalyzer(cfg.GitHubToken)
	defer analyzer.Cleanup()

	analysis, err := analyzer.Analyze(cmd.Context(), owner, repo)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("%s/%s\n", analysis.Owner, analysis.Repo)
	fmt.Printf("Files: %d, total size: %s\n", analysis.TotalFiles, formatBytes(analysis.TotalSize))

	if len(analysis.Languages) > 0 {
		fmt.Println("\nFile types:")
		exts := make([]string, 0, len(analysis.Languages))
		for ext := range analysis.Languages {
			exts = append(exts, ext)
		}
		sort.Slice(exts, func(i, j int) bool {
			if analysis.Languages[exts[i]] != analysis.Languages[exts[j]] {
				return analysis.Languages[exts[i]] > analysis.Languages[exts[j]]
			}
			return exts[i] < exts[j]
		})
		for _, ext := range exts {
			fmt.Printf("  %-12s %d\n", ext, analysis.Languages[ext])
		}
	}

	if len(analysis.TopLevel) > 0 {
		fmt.Println("\nTop level:")
		for _, entry := range analysis.TopLevel {
			fmt.Printf("  %s\n", entry)
		}
	}

	if len(analysis.LargestDirs) > 0 {
		fmt.Println("\nLargest directories:")
		for _, dir := range analysis.LargestDirs {
			fmt.Printf("  %-24s %s\n", dir.Path, formatBytes(dir.Size))
		}
	}
	return nil
}

func formatBytes(size int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/mb)
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/kb)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
