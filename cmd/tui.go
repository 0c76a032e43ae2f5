package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/needledrop/internal/config"
	"github.com/jfmyers9/needledrop/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the daemon with a terminal dashboard",
	Long: `Run the recognition daemon with a terminal-based dashboard.

The dashboard shows:
- The most recently confirmed track
- A live input level meter with standby indication
- The recent play history with scrobble status

Press 'q' to quit; this also stops the daemon.`,
	RunE: runTUIDaemon,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: discarded while the dashboard is up)")
	tuiCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	tuiCmd.Flags().StringVar(&daemonDataDir, "data-dir", "", "Data directory for the play history (default: ~/.local/share/needledrop)")
}

func runTUIDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Logging to stderr would corrupt the dashboard; require a file
	logFile := daemonLogFile
	if logFile == "" {
		logFile = "/dev/null"
	}
	logger := setupLogger(logFile, daemonLogLevel)

	d, source, err := buildDaemon(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The daemon drives recognition in the background; the dashboard only
	// reads its status and history
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run()
	}()

	app := tui.New(d.Status, d.Recent)
	if err := app.Run(ctx); err != nil {
		return err
	}

	// Quitting the dashboard stops the daemon
	d.Stop()
	runErr := <-errCh

	if err := d.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
	}

	return runErr
}
