package recognizer

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/needledrop/internal/audio"
	"github.com/jfmyers9/needledrop/pkg/shazam"
)

// DefaultConfidence is assumed when the service reply omits a confidence
// value. The service frequently returns valid matches without one, so a
// missing value must not suppress the match.
const DefaultConfidence = 1.0

// Outcome is the normalized result of one clip submission. Artist and
// Title are empty when the clip produced no actionable identification,
// in which case Confidence is always 0 regardless of the raw service
// value.
type Outcome struct {
	Artist     string
	Title      string
	Confidence float64
}

// Matched reports whether the outcome carries a usable identification.
func (o Outcome) Matched() bool {
	return o.Artist != "" && o.Title != ""
}

// Recognizer is the boundary to the external fingerprint service.
type Recognizer interface {
	Recognize(ctx context.Context, envelope []byte) (*shazam.Result, error)
}

// Gateway wraps one recognition call per clip and normalizes the reply.
// Service failures and unusable replies are absorbed into an empty
// outcome; only diagnostics distinguish them.
type Gateway struct {
	client    Recognizer
	threshold float64
	logger    zerolog.Logger
}

// NewGateway creates a Gateway. Outcomes with confidence below threshold
// are suppressed to empty before they can reach the vote tally.
func NewGateway(client Recognizer, threshold float64, logger zerolog.Logger) *Gateway {
	return &Gateway{
		client:    client,
		threshold: threshold,
		logger:    logger.With().Str("component", "recognizer").Logger(),
	}
}

// Identify submits one clip and returns the normalized outcome. The clip
// is packaged into the service's expected envelope and never retained
// after the call returns. The method blocks until a reply or failure.
func (g *Gateway) Identify(ctx context.Context, clip audio.Clip) Outcome {
	envelope, err := Envelope(clip)
	if err != nil {
		g.logger.Debug().Err(err).Msg("Failed to package clip")
		return Outcome{}
	}

	result, err := g.client.Recognize(ctx, envelope)
	if err != nil {
		// Recognition failures are recovered locally as "no match"
		g.logger.Debug().Err(err).Msg("Recognition call failed")
		return Outcome{}
	}

	if !result.Matched() {
		g.logger.Debug().Str("tag_id", result.TagID).Msg("No match")
		return Outcome{}
	}

	artist := strings.TrimSpace(result.Track.Subtitle)
	title := strings.TrimSpace(result.Track.Title)
	if artist == "" || title == "" {
		// A partial identification is not actionable
		g.logger.Debug().
			Str("artist", artist).
			Str("title", title).
			Msg("Match missing artist or title")
		return Outcome{}
	}

	confidence := DefaultConfidence
	if result.Confidence != nil {
		confidence = *result.Confidence
	}

	g.logger.Debug().
		Str("artist", artist).
		Str("title", title).
		Float64("confidence", confidence).
		Float64("threshold", g.threshold).
		Msg("Detected track")

	if confidence < g.threshold {
		g.logger.Debug().
			Float64("confidence", confidence).
			Float64("threshold", g.threshold).
			Msg("Match below confidence threshold")
		return Outcome{}
	}

	return Outcome{Artist: artist, Title: title, Confidence: confidence}
}
