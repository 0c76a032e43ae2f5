package detector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/needledrop/internal/audio"
	"github.com/jfmyers9/needledrop/internal/recognizer"
)

// Params holds the consistency-check policy.
type Params struct {
	Rounds     int           // Number of sampling rounds per check
	Majority   int           // Matching rounds required to confirm (Majority <= Rounds)
	Window     time.Duration // Capture duration per round
	RoundDelay time.Duration // Pause between rounds
}

// DefaultParams returns the standard detection policy: three 5-second
// samples, at least two agreeing, one second between rounds.
func DefaultParams() Params {
	return Params{
		Rounds:     3,
		Majority:   2,
		Window:     5 * time.Second,
		RoundDelay: 1 * time.Second,
	}
}

// ConfirmedTrack is the majority winner of one consistency check.
type ConfirmedTrack struct {
	Artist string
	Title  string
}

// Gateway normalizes one recognition attempt per clip.
type Gateway interface {
	Identify(ctx context.Context, clip audio.Clip) recognizer.Outcome
}

// Detector drives repeated recognition rounds over a live audio source
// and confirms a track only when a single (artist, title) pair reaches
// the required majority. Rounds run strictly sequentially; a Detector
// must not be invoked concurrently on the same source.
type Detector struct {
	source  audio.Source
	format  audio.Format
	gateway Gateway
	params  Params
	logger  zerolog.Logger
}

// New creates a Detector.
func New(source audio.Source, format audio.Format, gateway Gateway, params Params, logger zerolog.Logger) *Detector {
	return &Detector{
		source:  source,
		format:  format,
		gateway: gateway,
		params:  params,
		logger:  logger.With().Str("component", "detector").Logger(),
	}
}

// Run performs exactly Rounds capture+recognize rounds and returns the
// confirmed track, or nil if no pair reached the majority. There is no
// early exit on a high-confidence hit; every round runs so a brief
// mis-identification cannot win on its own.
//
// Capture errors abort the check and propagate to the caller; recognition
// failures have already been absorbed into empty outcomes by the gateway.
func (d *Detector) Run(ctx context.Context) (*ConfirmedTrack, error) {
	tally := NewTally()

	for i := 1; i <= d.params.Rounds; i++ {
		d.logger.Debug().
			Int("round", i).
			Int("rounds", d.params.Rounds).
			Msg("Consistency check round")

		clip, err := audio.Record(ctx, d.source, d.format, d.params.Window)
		if err != nil {
			return nil, fmt.Errorf("round %d capture failed: %w", i, err)
		}

		outcome := d.gateway.Identify(ctx, clip)
		if outcome.Matched() {
			tally.Add(ConfirmedTrack{Artist: outcome.Artist, Title: outcome.Title})
			d.logger.Debug().
				Int("round", i).
				Str("artist", outcome.Artist).
				Str("title", outcome.Title).
				Float64("confidence", outcome.Confidence).
				Msg("Round matched")
		} else {
			d.logger.Debug().Int("round", i).Msg("Round produced no accepted outcome")
		}

		if i < d.params.Rounds {
			if !sleepCtx(ctx, d.params.RoundDelay) {
				return nil, ctx.Err()
			}
		}
	}

	winner, count := tally.Winner()
	if count < d.params.Majority {
		d.logger.Debug().
			Int("best_count", count).
			Int("majority", d.params.Majority).
			Msg("No consistent track")
		return nil, nil
	}

	d.logger.Info().
		Str("artist", winner.Artist).
		Str("title", winner.Title).
		Int("matches", count).
		Int("rounds", d.params.Rounds).
		Msg("Consistent track detected")

	return &winner, nil
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
