package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

// constantSource returns buffers filled with a fixed sample value.
type constantSource struct {
	sample int16
	reads  int
}

func (s *constantSource) Read(_ context.Context, frames int) ([]byte, error) {
	s.reads++
	buf := make([]byte, frames*2)
	for i := 0; i < len(buf); i += 2 {
		binary.LittleEndian.PutUint16(buf[i:], uint16(s.sample))
	}
	return buf, nil
}

// failingSource fails every read.
type failingSource struct {
	err error
}

func (s *failingSource) Read(_ context.Context, _ int) ([]byte, error) {
	return nil, s.err
}

func TestRMS(t *testing.T) {
	tests := []struct {
		name   string
		sample int16
		want   float64
	}{
		{name: "all zero buffer", sample: 0, want: 0},
		{name: "constant positive amplitude", sample: 1000, want: 1000},
		{name: "constant negative amplitude", sample: -1000, want: 1000},
		{name: "full scale", sample: 32767, want: 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 4096*2)
			for i := 0; i < len(buf); i += 2 {
				binary.LittleEndian.PutUint16(buf[i:], uint16(tt.sample))
			}

			got := RMS(buf)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RMS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMSEmptyBuffer(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
}

func TestLevel(t *testing.T) {
	format := DefaultFormat()
	src := &constantSource{sample: 500}

	level, err := Level(context.Background(), src, format, time.Second)
	if err != nil {
		t.Fatalf("Level() error: %v", err)
	}

	// RMS of a constant signal equals its magnitude
	if math.Abs(level-500) > 1e-9 {
		t.Errorf("Level() = %v, want 500", level)
	}

	wantReads := int(float64(format.SampleRate) / ChunkFrames * 1.0)
	if src.reads != wantReads {
		t.Errorf("source read %d chunks, want %d", src.reads, wantReads)
	}
}

func TestLevelZeroDuration(t *testing.T) {
	// A duration that rounds to zero chunks must not touch the source
	src := &failingSource{err: errors.New("should not be read")}

	level, err := Level(context.Background(), src, DefaultFormat(), 0)
	if err != nil {
		t.Fatalf("Level() error: %v", err)
	}
	if level != 0 {
		t.Errorf("Level() = %v, want 0", level)
	}
}

func TestLevelPropagatesReadError(t *testing.T) {
	readErr := errors.New("device unplugged")
	src := &failingSource{err: readErr}

	_, err := Level(context.Background(), src, DefaultFormat(), time.Second)
	if err == nil {
		t.Fatal("expected error from failing source")
	}
	if !errors.Is(err, readErr) {
		t.Errorf("expected wrapped source error, got: %v", err)
	}
}

func TestPeak(t *testing.T) {
	samples := []int16{100, -3000, 250, 0}
	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}

	if got := Peak(buf); got != 3000 {
		t.Errorf("Peak() = %v, want 3000", got)
	}
}

func TestRecordConcatenatesChunks(t *testing.T) {
	format := DefaultFormat()
	src := &constantSource{sample: 7}

	clip, err := Record(context.Background(), src, format, time.Second)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	wantChunks := int(float64(format.SampleRate) / ChunkFrames * 1.0)
	wantBytes := wantChunks * ChunkFrames * format.BytesPerFrame()
	if len(clip.Data) != wantBytes {
		t.Errorf("clip has %d bytes, want %d", len(clip.Data), wantBytes)
	}
}
