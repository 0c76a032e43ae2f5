package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/needledrop/internal/audio"
	"github.com/jfmyers9/needledrop/internal/detector"
	"github.com/jfmyers9/needledrop/internal/scrobbler"
)

// Config holds daemon configuration
type Config struct {
	Detection     detector.Params // Consistency-check policy
	CheckInterval time.Duration   // Pause between confirmation attempts
	LevelWindow   time.Duration   // Audio measured per standby window
	HistoryDB     string          // Path to the play history database
}

// Status is a snapshot of the daemon for display surfaces.
type Status struct {
	Standby   bool
	Level     float64
	LastTrack scrobbler.Track
}

// Daemon coordinates level metering, track confirmation, and play
// logging over a single audio source.
type Daemon struct {
	config   Config
	source   audio.Source
	format   audio.Format
	detector *detector.Detector
	deduper  *scrobbler.Deduper
	history  *scrobbler.History
	standby  detector.Standby
	logger   zerolog.Logger

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
}

// New creates a new Daemon instance
func New(cfg Config, source audio.Source, format audio.Format, gateway detector.Gateway, deduper *scrobbler.Deduper, logger zerolog.Logger) (*Daemon, error) {
	history, err := scrobbler.NewHistory(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create history: %w", err)
	}

	return &Daemon{
		config:   cfg,
		source:   source,
		format:   format,
		detector: detector.New(source, format, gateway, cfg.Detection, logger),
		deduper:  deduper,
		history:  history,
		logger:   logger.With().Str("component", "daemon").Logger(),
	}, nil
}

// Run starts the daemon and blocks until shutdown signal received
func (d *Daemon) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		<-sigChan
		d.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Second signal forces exit
		<-sigChan
		d.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	// Run the daemon
	if err := d.run(ctx); err != nil && err != context.Canceled {
		return err
	}

	return nil
}

// run is the main daemon loop
func (d *Daemon) run(ctx context.Context) error {
	d.logger.Info().Msg("Starting daemon")

	for {
		if err := ctx.Err(); err != nil {
			d.logger.Info().Msg("Daemon stopped")
			return err
		}

		if err := d.session(ctx); err != nil {
			if ctx.Err() != nil {
				d.logger.Info().Msg("Daemon stopped")
				return ctx.Err()
			}
			// Capture hiccups are transient; keep the loop alive
			d.logger.Warn().Err(err).Msg("Session failed")
		}

		if !sleepCtx(ctx, d.config.CheckInterval) {
			d.logger.Info().Msg("Daemon stopped")
			return ctx.Err()
		}
	}
}

// session performs one pass: measure the input level, update the
// standby state, and run a confirmation attempt unless standby is
// engaged.
func (d *Daemon) session(ctx context.Context) error {
	level, err := audio.Level(ctx, d.source, d.format, d.config.LevelWindow)
	if err != nil {
		return fmt.Errorf("failed to measure input level: %w", err)
	}

	if d.standby.Update(level) {
		if d.standby.Engaged() {
			d.logger.Info().Float64("level", level).Msg("Entering standby: no signal on input")
		} else {
			d.logger.Info().Float64("level", level).Msg("Signal detected, resuming recognition")
		}
	}
	d.setStatus(func(s *Status) {
		s.Standby = d.standby.Engaged()
		s.Level = level
	})

	if d.standby.Engaged() {
		return nil
	}

	track, err := d.detector.Run(ctx)
	if err != nil {
		return err
	}
	if track == nil {
		return nil
	}

	d.handleConfirmation(ctx, *track)
	return nil
}

// handleConfirmation routes a confirmed track through duplicate
// suppression and records newly logged plays in the history.
func (d *Daemon) handleConfirmation(ctx context.Context, track detector.ConfirmedTrack) {
	pair := scrobbler.Track{Artist: track.Artist, Title: track.Title}

	last, logged := d.deduper.Log(ctx, pair)
	d.setStatus(func(s *Status) { s.LastTrack = last })

	if !logged {
		return
	}

	play := scrobbler.Play{
		Artist:    pair.Artist,
		Title:     pair.Title,
		PlayedAt:  time.Now(),
		Scrobbled: true,
	}
	if _, err := d.history.Add(ctx, play); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to record play in history")
	}
}

// Stop requests a graceful shutdown, as if a signal had been received.
func (d *Daemon) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Recent returns the most recent plays from the history, newest first.
func (d *Daemon) Recent(ctx context.Context, limit int) ([]scrobbler.Play, error) {
	return d.history.Recent(ctx, limit)
}

// Status returns a snapshot of the daemon state.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Daemon) setStatus(update func(*Status)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	update(&d.status)
}

// Shutdown gracefully shuts down the daemon
func (d *Daemon) Shutdown() error {
	d.logger.Info().Msg("Shutting down daemon")

	ctx := context.Background()

	// Trim plays older than 90 days
	if _, err := d.history.Cleanup(ctx, 90*24*time.Hour); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to cleanup history")
	}

	if err := d.history.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}

	return nil
}

// sleepCtx waits for the duration or until the context is cancelled.
// Returns true if the wait completed.
func sleepCtx(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
