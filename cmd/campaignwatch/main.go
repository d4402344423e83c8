// Command campaignwatch is the terminal dashboard for the campaign
// social-media analytics backend.
//
// Usage:
//
//	campaignwatch             Run the dashboard (prints the report when stdout is not a TTY)
//	campaignwatch health      Backend health
//	campaignwatch overview    Per-candidate totals
//	campaignwatch posts       Server-sorted post ranking
//	campaignwatch scrape      Trigger a collection run
//	campaignwatch report      Overview, themes, words and comparison
//	campaignwatch events      JSONL event log viewer
//	campaignwatch runs        Local log of collection runs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/logging"
	"github.com/abelbrown/campaignwatch/internal/monitor"
	"github.com/abelbrown/campaignwatch/internal/store"
	"github.com/abelbrown/campaignwatch/internal/ui"
)

// ringSize is the number of events kept for the dashboard overlay.
const ringSize = 500

// Global flags.
var (
	configPath string
	apiURL     string
	candidate  string
	logLevel   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "campaignwatch",
		Short: "Campaign social-media analytics dashboard",
		Long: `campaignwatch reads sentiment, themes, word frequencies, post rankings,
competitive metrics and AI suggestions from the analytics backend and shows
them in a tabbed terminal dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTTY() {
				return runReport(cmd)
			}
			return runDashboard(cmd)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.campaignwatch/config.json)")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides CAMPAIGN_API_URL)")
	root.PersistentFlags().StringVar(&candidate, "candidate", "", "Candidate filter: all or a roster key")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(newHealthCmd())
	root.AddCommand(newOverviewCmd())
	root.AddCommand(newPostsCmd())
	root.AddCommand(newScrapeCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newRunsCmd())
	return root
}

func isTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func runDashboard(cmd *cobra.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	st, err := store.Open(e.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ring := eventlog.NewRingBuffer(ringSize)
	e.events.AttachRing(ring)
	e.events.Info(eventlog.KindStartup, "main", e.client.BaseURL())
	logging.Info("dashboard starting", "api", e.client.BaseURL())

	app := ui.NewApp(ui.Options{
		Backend: e.client,
		Runs:    st,
		Config:  e.cfg,
		Events:  e.events,
		Ring:    ring,
		Ctx:     ctx,
	})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	mon := monitor.New(e.client, e.cfg.HealthInterval(), e.events)
	mon.Start(ctx, program)

	_, runErr := program.Run()

	cancel()
	mon.Wait()
	e.events.Info(eventlog.KindShutdown, "main", "")
	logging.Info("dashboard stopped")

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run dashboard: %w", runErr)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "erro: %v\n", err)
		os.Exit(1)
	}
}
