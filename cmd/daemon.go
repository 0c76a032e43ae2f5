package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/needledrop/internal/audio"
	"github.com/jfmyers9/needledrop/internal/config"
	"github.com/jfmyers9/needledrop/internal/daemon"
	"github.com/jfmyers9/needledrop/internal/detector"
	"github.com/jfmyers9/needledrop/internal/recognizer"
	"github.com/jfmyers9/needledrop/internal/scrobbler"
	"github.com/jfmyers9/needledrop/pkg/shazam"
)

var (
	daemonLogFile  string
	daemonLogLevel string
	daemonDataDir  string
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the recognition daemon",
	Long: `Run the daemon that listens to the configured audio input, identifies
playing tracks, and scrobbles them to Last.fm.

The daemon will:
- Measure the input level and sleep while the turntable is silent
- Sample the input several times per check and identify each sample
- Confirm a track only when a majority of samples agree on it
- Scrobble each confirmed track once, suppressing repeats of the same track
- Handle graceful shutdown on SIGINT/SIGTERM

Scrobbling requires Last.fm credentials; without them the daemon still
recognizes tracks and records them in the local play history.

The daemon runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	// Command-line flags
	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: stderr)")
	daemonCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	daemonCmd.Flags().StringVar(&daemonDataDir, "data-dir", "", "Data directory for the play history (default: ~/.local/share/needledrop)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(daemonLogFile, daemonLogLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting needledrop daemon")

	d, source, err := buildDaemon(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	// Run daemon (blocks until shutdown signal)
	if err := d.Run(); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	// Graceful shutdown
	if err := d.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	logger.Info().Msg("Daemon stopped")
	return nil
}

// buildDaemon wires the capture source, recognition gateway, and
// scrobble pipeline into a daemon.
func buildDaemon(cfg *config.Config, logger zerolog.Logger) (*daemon.Daemon, *audio.Capture, error) {
	if cfg.Shazam.APIKey == "" {
		return nil, nil, fmt.Errorf("recognition API key not configured; set shazam.api_key in the config file")
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("data_dir", dataDir).Msg("Using data directory")

	format := audio.Format{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
	}

	source, err := audio.NewCapture(cfg.Audio.Device, format, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audio input: %w", err)
	}

	recognitionClient, err := shazam.NewClient(shazam.Config{
		APIKey:  cfg.Shazam.APIKey,
		BaseURL: cfg.Shazam.BaseURL,
	})
	if err != nil {
		_ = source.Close()
		return nil, nil, fmt.Errorf("failed to create recognition client: %w", err)
	}

	gateway := recognizer.NewGateway(recognitionClient, cfg.Detection.ConfidenceThreshold, logger)

	var submitter scrobbler.Submitter
	if cfg.ScrobblingEnabled() {
		if cfg.LastFM.SessionKey != "" {
			client, err := scrobbler.NewWithSession(cfg.LastFM.APIKey, cfg.LastFM.APISecret, cfg.LastFM.SessionKey)
			if err != nil {
				_ = source.Close()
				return nil, nil, fmt.Errorf("failed to create Last.fm client: %w", err)
			}
			submitter = client
		} else {
			client, err := scrobbler.New(cfg.LastFM.APIKey, cfg.LastFM.APISecret)
			if err != nil {
				_ = source.Close()
				return nil, nil, fmt.Errorf("failed to create Last.fm client: %w", err)
			}
			key, err := client.Authenticate(context.Background(), cfg.LastFM.Username, cfg.LastFM.PasswordHash)
			if err != nil {
				_ = source.Close()
				return nil, nil, fmt.Errorf("Last.fm authentication failed: %w", err)
			}
			cfg.LastFM.SessionKey = key
			if err := cfg.Save(); err != nil {
				logger.Warn().Err(err).Msg("Failed to persist session key")
			}
			submitter = client
		}
	} else {
		logger.Warn().Msg("Last.fm credentials not configured, scrobbling disabled")
		submitter = noopSubmitter{}
	}

	deduper := scrobbler.NewDeduper(submitter, logger)

	daemonCfg := daemon.Config{
		Detection: detector.Params{
			Rounds:     cfg.Detection.Rounds,
			Majority:   cfg.Detection.Majority,
			Window:     cfg.Detection.Window(),
			RoundDelay: cfg.Detection.RoundDelay(),
		},
		CheckInterval: cfg.Detection.CheckInterval(),
		LevelWindow:   time.Second,
		HistoryDB:     filepath.Join(dataDir, "history.db"),
	}

	d, err := daemon.New(daemonCfg, source, format, gateway, deduper, logger)
	if err != nil {
		_ = source.Close()
		return nil, nil, fmt.Errorf("failed to create daemon: %w", err)
	}

	return d, source, nil
}

// resolveDataDir returns the data directory, creating it if needed.
func resolveDataDir() (string, error) {
	dataDir := daemonDataDir
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share", "needledrop")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// noopSubmitter is used when scrobbling is disabled; plays are still
// deduplicated and recorded in the history.
type noopSubmitter struct{}

func (noopSubmitter) Submit(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
