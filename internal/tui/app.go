package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jfmyers9/needledrop/internal/daemon"
	"github.com/jfmyers9/needledrop/internal/detector"
	"github.com/jfmyers9/needledrop/internal/scrobbler"
)

const maxRecentPlays = 8

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 500 * time.Millisecond,
	}
}

// StatusFunc returns the current daemon snapshot.
type StatusFunc func() daemon.Status

// RecentFunc returns the most recent plays, newest first.
type RecentFunc func(ctx context.Context, limit int) ([]scrobbler.Play, error)

// App is the TUI application for monitoring the recognition daemon
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	level      *tview.TextView
	recent     *tview.TextView
	status     *tview.TextView

	// Configuration
	config Config

	statusFn StatusFunc
	recentFn RecentFunc

	// Last-rendered content for change detection
	lastNowPlaying string
	lastLevel      string
	lastRecent     string

	// Cached level bar width to stabilize change detection.
	// Updated only when GetInnerRect returns a positive value.
	lastBarWidth int

	// Context cancel function
	cancelFunc context.CancelFunc
}

// New creates a new TUI application with default config
func New(statusFn StatusFunc, recentFn RecentFunc) *App {
	return NewWithConfig(DefaultConfig(), statusFn, recentFn)
}

// NewWithConfig creates a new TUI application with the given config
func NewWithConfig(cfg Config, statusFn StatusFunc, recentFn RecentFunc) *App {
	a := &App{
		app:      tview.NewApplication(),
		config:   cfg,
		statusFn: statusFn,
		recentFn: recentFn,
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	// Now playing panel
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetTitleAlign(tview.AlignLeft)

	// Input level meter
	a.level = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.level.SetBorder(true).
		SetTitle(" Input ").
		SetTitleAlign(tview.AlignLeft)

	// Recent plays
	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.recent.SetBorder(true).
		SetTitle(" Recent ").
		SetTitleAlign(tview.AlignLeft)

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]Press 'q' to quit[-]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.nowPlaying, 0, 3, false).
		AddItem(a.level, 3, 1, false).
		AddItem(a.recent, maxRecentPlays+2, 1, false).
		AddItem(a.status, 1, 1, false)

	// Handle keyboard input
	a.app.SetInputCapture(a.handleKeyEvent)

	a.app.SetRoot(flex, true)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	}
	return event
}

// Run starts the TUI and blocks until it is stopped
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	go a.refreshLoop(ctx)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// refreshLoop drives all redraws from a single ticker to prevent queued
// redraw buildup.
func (a *App) refreshLoop(ctx context.Context) {
	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = 500 * time.Millisecond
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	a.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.refresh(ctx)
		}
	}
}

// refresh updates all UI components
func (a *App) refresh(ctx context.Context) {
	status := a.statusFn()

	var plays []scrobbler.Play
	if a.recentFn != nil {
		plays, _ = a.recentFn(ctx, maxRecentPlays)
	}

	a.app.QueueUpdateDraw(func() {
		a.updateNowPlaying(status)
		a.updateLevel(status)
		a.updateRecent(plays)
	})
}

// updateNowPlaying updates the now playing panel
func (a *App) updateNowPlaying(status daemon.Status) {
	var text string

	switch {
	case status.Standby:
		text = "\n\n[gray]Standby: no signal on input[-]"
	case status.LastTrack == (scrobbler.Track{}):
		text = "\n\n[gray]Listening...[-]"
	default:
		var sb strings.Builder
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(status.LastTrack.Title)))
		sb.WriteString(fmt.Sprintf("[yellow]%s[-]", tview.Escape(status.LastTrack.Artist)))
		text = sb.String()
	}

	if text != a.lastNowPlaying {
		a.lastNowPlaying = text
		a.nowPlaying.SetText(text)
	}
}

// updateLevel updates the input level meter
func (a *App) updateLevel(status daemon.Status) {
	_, _, width, _ := a.level.GetInnerRect()
	barWidth := width - 10 // Account for the numeric readout
	// Only update cached width when GetInnerRect returns a positive value,
	// avoiding flicker from transient zero-width during layout.
	if barWidth > 0 {
		a.lastBarWidth = barWidth
	}
	if a.lastBarWidth < 10 {
		a.lastBarWidth = 10
	}

	bar := buildLevelBar(status.Level, a.lastBarWidth)
	text := fmt.Sprintf("%s %5.0f", bar, status.Level)

	if text != a.lastLevel {
		a.lastLevel = text
		a.level.SetText(text)
	}
}

// updateRecent updates the recent plays panel
func (a *App) updateRecent(plays []scrobbler.Play) {
	var sb strings.Builder

	if len(plays) == 0 {
		sb.WriteString("[gray]No plays yet[-]")
	} else {
		for i, play := range plays {
			if i > 0 {
				sb.WriteString("\n")
			}

			// Scrobble indicator
			if play.Scrobbled {
				sb.WriteString("[green]✓[-] ")
			} else {
				sb.WriteString("[red]✗[-] ")
			}

			sb.WriteString(fmt.Sprintf("[gray]%s[-] ", play.PlayedAt.Format("15:04")))
			sb.WriteString(fmt.Sprintf("[white]%s[-] - %s",
				tview.Escape(play.Artist), tview.Escape(play.Title)))
		}
	}

	text := sb.String()
	if text != a.lastRecent {
		a.lastRecent = text
		a.recent.SetText(text)
	}
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// buildLevelBar renders the measured input level as a meter. The filled
// region turns gray below the silence threshold and green above it.
func buildLevelBar(level float64, width int) string {
	if width <= 0 {
		return ""
	}

	fraction := level / 32767
	if fraction > 1 {
		fraction = 1
	}
	if fraction < 0 {
		fraction = 0
	}

	filled := int(fraction * float64(width))
	empty := width - filled

	color := "green"
	if level < detector.SilenceThreshold {
		color = "gray"
	}

	return "[" + color + "]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"
}
