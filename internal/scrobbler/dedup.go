package scrobbler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Track is a confirmed (artist, title) pair.
type Track struct {
	Artist string
	Title  string
}

// Valid reports whether the pair is usable for logging. Blank or
// whitespace-only fields are not.
func (t Track) Valid() bool {
	return strings.TrimSpace(t.Artist) != "" && strings.TrimSpace(t.Title) != ""
}

// Submitter sends one play to the external scrobble service.
type Submitter interface {
	Submit(ctx context.Context, artist, title string, timestamp time.Time) error
}

// Deduper gates confirmed tracks so each play is scrobbled at most once.
// The remembered pair advances only when the external service
// acknowledged the submission; a failed submission leaves it unchanged,
// so the next distinct confirmation of the same track retries instead
// of being suppressed as a duplicate.
//
// The remembered pair lives in memory only. A restart re-allows the
// first play to be logged again, which is acceptable.
type Deduper struct {
	mu        sync.Mutex
	last      Track
	submitter Submitter
	now       func() time.Time
	logger    zerolog.Logger
}

// NewDeduper creates a Deduper with an empty remembered pair.
func NewDeduper(submitter Submitter, logger zerolog.Logger) *Deduper {
	return &Deduper{
		submitter: submitter,
		now:       time.Now,
		logger:    logger.With().Str("component", "dedup").Logger(),
	}
}

// Log submits the confirmed track unless it repeats the remembered pair
// (compared case-sensitively). It returns the remembered pair after the
// attempt and whether this call logged a new play.
//
// Submission failures are reported as diagnostics, never escalated: the
// track simply remains unlogged.
func (d *Deduper) Log(ctx context.Context, track Track) (Track, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !track.Valid() {
		d.logger.Info().
			Str("artist", track.Artist).
			Str("title", track.Title).
			Msg("Song not logged: invalid artist or title")
		return d.last, false
	}

	if track == d.last {
		d.logger.Debug().
			Str("artist", track.Artist).
			Str("title", track.Title).
			Msg("Duplicate song detected, not logging")
		return d.last, false
	}

	if err := d.submitter.Submit(ctx, track.Artist, track.Title, d.now()); err != nil {
		// Leave the remembered pair alone so the next confirmation of
		// this track retries rather than silently dropping the play
		d.logger.Warn().
			Err(err).
			Str("artist", track.Artist).
			Str("title", track.Title).
			Msg("Failed to scrobble")
		return d.last, false
	}

	d.last = track
	d.logger.Info().
		Str("artist", track.Artist).
		Str("title", track.Title).
		Msg("Scrobbled")
	return d.last, true
}

// LastLogged returns the most recently scrobbled pair, or a zero Track
// if nothing has been logged since process start.
func (d *Deduper) LastLogged() Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
