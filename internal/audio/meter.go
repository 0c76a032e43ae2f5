package audio

import (
	"context"
	"encoding/binary"
	"math"
	"time"
)

// Level reads duration's worth of frames from src and returns the
// root-mean-square level of the samples as a linear 16-bit magnitude
// (0 for silence, up to 32767 for a full-scale square wave).
//
// A duration that rounds down to zero chunks returns 0 without reading.
// Read errors are propagated unchanged; the caller decides severity.
func Level(ctx context.Context, src Source, format Format, duration time.Duration) (float64, error) {
	if chunkCount(format, duration) == 0 {
		return 0, nil
	}

	clip, err := Record(ctx, src, format, duration)
	if err != nil {
		return 0, err
	}

	return RMS(clip.Data), nil
}

// RMS computes the root-mean-square of raw PCM data interpreted as signed
// 16-bit little-endian samples. Samples are squared in float64 so a
// full-scale buffer cannot overflow the accumulator.
func RMS(data []byte) float64 {
	var sumSquares float64
	var count int

	for i := 0; i+1 < len(data); i += 2 {
		sample := float64(int16(binary.LittleEndian.Uint16(data[i:])))
		sumSquares += sample * sample
		count++
	}

	if count == 0 {
		return 0
	}

	return math.Sqrt(sumSquares / float64(count))
}

// Peak returns the maximum absolute sample value in the buffer.
// Unlike RMS it reacts to momentary amplitude, which makes it the
// better indicator of clipped input.
func Peak(data []byte) float64 {
	var peak float64

	for i := 0; i+1 < len(data); i += 2 {
		sample := math.Abs(float64(int16(binary.LittleEndian.Uint16(data[i:]))))
		if sample > peak {
			peak = sample
		}
	}

	return peak
}
