package audio

import (
	"context"
	"fmt"
	"time"
)

// Default session format. These match what the recognition service expects
// and must not change mid-session: 48kHz mono signed 16-bit little-endian,
// read in 4096-frame chunks.
const (
	DefaultSampleRate = 48000
	DefaultChannels   = 1
	BitDepth          = 16
	ChunkFrames       = 4096
)

// Format describes the PCM format of an audio session.
// It is agreed at session setup and fixed for the session's lifetime.
type Format struct {
	SampleRate int // Samples per second per channel
	Channels   int // Number of interleaved channels
}

// DefaultFormat returns the standard capture format.
func DefaultFormat() Format {
	return Format{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
	}
}

// BytesPerFrame returns the size of one frame (all channels) in bytes.
func (f Format) BytesPerFrame() int {
	return f.Channels * (BitDepth / 8)
}

// Source is a live PCM audio input. Read blocks until the requested number
// of frames is available and must tolerate buffer overflow conditions
// (dropped frames are not an error). Reading consumes frames: two callers
// must not interleave reads on the same source.
type Source interface {
	Read(ctx context.Context, frames int) ([]byte, error)
}

// Clip is one captured window of PCM audio in the session format.
// It is owned by the caller that captured it and is never retained by
// the recognition layer.
type Clip struct {
	Format Format
	Data   []byte
}

// Duration returns the clip length derived from its frame count.
func (c Clip) Duration() time.Duration {
	bpf := c.Format.BytesPerFrame()
	if bpf == 0 || c.Format.SampleRate == 0 {
		return 0
	}
	frames := len(c.Data) / bpf
	return time.Duration(frames) * time.Second / time.Duration(c.Format.SampleRate)
}

// chunkCount returns how many ChunkFrames-sized reads cover the duration.
// Mirrors the capture loop arithmetic: int(rate / chunk * seconds).
func chunkCount(format Format, duration time.Duration) int {
	return int(float64(format.SampleRate) / ChunkFrames * duration.Seconds())
}

// Record reads consecutive chunks from src until duration's worth of frames
// has been consumed and returns them as a single clip.
func Record(ctx context.Context, src Source, format Format, duration time.Duration) (Clip, error) {
	chunks := chunkCount(format, duration)
	data := make([]byte, 0, chunks*ChunkFrames*format.BytesPerFrame())

	for i := 0; i < chunks; i++ {
		buf, err := src.Read(ctx, ChunkFrames)
		if err != nil {
			return Clip{}, fmt.Errorf("failed to read audio chunk %d/%d: %w", i+1, chunks, err)
		}
		data = append(data, buf...)
	}

	return Clip{Format: format, Data: data}, nil
}
