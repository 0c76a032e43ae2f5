package recognizer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/needledrop/internal/audio"
	"github.com/jfmyers9/needledrop/pkg/shazam"
)

// fakeRecognizer returns a canned result or error.
type fakeRecognizer struct {
	result *shazam.Result
	err    error
	calls  int
}

func (f *fakeRecognizer) Recognize(_ context.Context, envelope []byte) (*shazam.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testClip(t *testing.T) audio.Clip {
	t.Helper()
	data := make([]byte, 4096*2)
	for i := 0; i < len(data); i += 2 {
		binary.LittleEndian.PutUint16(data[i:], uint16(int16(1000)))
	}
	return audio.Clip{Format: audio.DefaultFormat(), Data: data}
}

func floatPtr(f float64) *float64 { return &f }

func matchResult(artist, title string, confidence *float64) *shazam.Result {
	return &shazam.Result{
		Matches:    []shazam.Match{{ID: "1"}},
		Track:      &shazam.Track{Title: title, Subtitle: artist},
		Confidence: confidence,
	}
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name      string
		result    *shazam.Result
		err       error
		threshold float64
		want      Outcome
	}{
		{
			name:      "service failure returns empty outcome",
			err:       errors.New("connection refused"),
			threshold: 0.5,
			want:      Outcome{},
		},
		{
			name:      "no match returns empty outcome",
			result:    &shazam.Result{TagID: "tag-1"},
			threshold: 0.5,
			want:      Outcome{},
		},
		{
			name:      "match with missing artist returns empty outcome",
			result:    matchResult("", "Money", floatPtr(0.9)),
			threshold: 0.5,
			want:      Outcome{},
		},
		{
			name:      "match with missing title returns empty outcome",
			result:    matchResult("Pink Floyd", "", floatPtr(0.9)),
			threshold: 0.5,
			want:      Outcome{},
		},
		{
			name:      "whitespace-only artist is treated as missing",
			result:    matchResult("   ", "Money", floatPtr(0.9)),
			threshold: 0.5,
			want:      Outcome{},
		},
		{
			name:      "confidence below threshold is suppressed",
			result:    matchResult("Pink Floyd", "Money", floatPtr(0.3)),
			threshold: 0.5,
			want:      Outcome{},
		},
		{
			name:      "confidence at threshold passes",
			result:    matchResult("Pink Floyd", "Money", floatPtr(0.5)),
			threshold: 0.5,
			want:      Outcome{Artist: "Pink Floyd", Title: "Money", Confidence: 0.5},
		},
		{
			name:      "missing confidence defaults and passes",
			result:    matchResult("Pink Floyd", "Money", nil),
			threshold: 0.5,
			want:      Outcome{Artist: "Pink Floyd", Title: "Money", Confidence: DefaultConfidence},
		},
		{
			name:      "full match",
			result:    matchResult("Pink Floyd", "Money", floatPtr(0.9)),
			threshold: 0.5,
			want:      Outcome{Artist: "Pink Floyd", Title: "Money", Confidence: 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeRecognizer{result: tt.result, err: tt.err}
			gw := NewGateway(client, tt.threshold, zerolog.Nop())

			got := gw.Identify(context.Background(), testClip(t))
			if got != tt.want {
				t.Errorf("Identify() = %+v, want %+v", got, tt.want)
			}
			if client.calls != 1 {
				t.Errorf("expected exactly 1 recognition call, got %d", client.calls)
			}
		})
	}
}

func TestOutcomeMatched(t *testing.T) {
	if (Outcome{}).Matched() {
		t.Error("empty outcome should not match")
	}
	if (Outcome{Artist: "a"}).Matched() {
		t.Error("outcome without title should not match")
	}
	if !(Outcome{Artist: "a", Title: "b", Confidence: 1}).Matched() {
		t.Error("complete outcome should match")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	clip := testClip(t)

	envelope, err := Envelope(clip)
	if err != nil {
		t.Fatalf("Envelope() error: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(envelope))
	if !dec.IsValidFile() {
		t.Fatal("envelope is not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	if buf.Format.SampleRate != clip.Format.SampleRate {
		t.Errorf("sample rate = %d, want %d", buf.Format.SampleRate, clip.Format.SampleRate)
	}
	if buf.Format.NumChannels != clip.Format.Channels {
		t.Errorf("channels = %d, want %d", buf.Format.NumChannels, clip.Format.Channels)
	}
	if len(buf.Data) != len(clip.Data)/2 {
		t.Errorf("decoded %d samples, want %d", len(buf.Data), len(clip.Data)/2)
	}
	if buf.Data[0] != 1000 {
		t.Errorf("first sample = %d, want 1000", buf.Data[0])
	}
}

func TestEnvelopeEmptyClip(t *testing.T) {
	if _, err := Envelope(audio.Clip{}); err == nil {
		t.Fatal("expected error for empty clip")
	}
}
