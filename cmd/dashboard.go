package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appconfig "github.com/travis-burmaster/bmasterai/internal/config"
	"github.com/travis-burmaster/bmasterai/internal/dashboard"
	"github.com/travis-burmaster/bmasterai/internal/monitor"
)

var (
	dashboardHost string
	dashboardPort int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the monitoring dashboard",
	Long: `
Start a local web dashboard showing invocation counts, per-agent task
statistics, and a live feed of monitor events over Server-Sent Events.

Examples:
  bmasterai dashboard
  bmasterai dashboard --port 9090
`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardHost, "host", "localhost", "Host to bind")
	dashboardCmd.Flags().IntVar(&dashboardPort, "port", 8081, "Port to listen on")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := monitor.Init(); err != nil {
		return fmt.Errorf("failed to open metrics store: %w", err)
	}
	defer func() { _ = monitor.Close() }()

	events, err := newEventLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	serverConfig := dashboard.DefaultServerConfig()
	serverConfig.Host = dashboardHost
	serverConfig.Port = dashboardPort

	logger := log.New(os.Stdout, "[Dashboard] ", log.LstdFlags)
	server := dashboard.NewServer(serverConfig, events, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := startAlertEvaluator(ctx, cfg, events, logger); err != nil {
		return err
	}

	logger.Printf("dashboard starting on http://%s:%d, press Ctrl+C to stop", dashboardHost, dashboardPort)
	return server.Start(ctx)
}
