package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print toolkit usage statistics",
	Long: `
Print cumulative invocation counts per mode and per-agent task
statistics from the local SQLite metrics store.
`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := monitor.Init(); err != nil {
		return fmt.Errorf("failed to open metrics store: %w", err)
	}
	defer func() { _ = monitor.Close() }()

	invocations := monitor.GetStats()

	var agents []monitor.AgentStats
	if store := monitor.GetStore(); store != nil {
		var err error
		agents, err = store.GetAgentStats()
		if err != nil {
			return fmt.Errorf("failed to load agent stats: %w", err)
		}
	}

	if statsJSON {
		payload := map[string]interface{}{
			"invocations": invocations,
			"agents":      agents,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Invocations:")
	modes := make([]string, 0, len(invocations))
	for mode := range invocations {
		modes = append(modes, string(mode))
	}
	sort.Strings(modes)
	for _, mode := range modes {
		fmt.Printf("  %-12s %d\n", mode, invocations[monitor.Mode(mode)])
	}
	if len(modes) == 0 {
		fmt.Println("  (none recorded)")
	}

	if len(agents) > 0 {
		fmt.Println("\nAgents:")
		fmt.Printf("  %-24s %8s %8s %12s\n", "AGENT", "TASKS", "ERRORS", "AVG MS")
		for _, agent := range agents {
			fmt.Printf("  %-24s %8d %8d %12.1f\n", agent.AgentID, agent.TaskCount, agent.ErrorCount, agent.AvgDurationMS)
		}
	}
	return nil
}
