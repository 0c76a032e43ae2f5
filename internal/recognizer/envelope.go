package recognizer

import (
	"encoding/binary"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jfmyers9/needledrop/internal/audio"
)

// wavAudioFormat is the RIFF audio format tag for uncompressed PCM.
const wavAudioFormat = 1

// Envelope packages a raw PCM clip into the WAV container the recognition
// service expects. Sample rate, channel count, and bit depth are carried
// over from the clip's session format; the service requires them to match
// what it was told to expect, so the capture format is fixed per session.
func Envelope(clip audio.Clip) ([]byte, error) {
	if len(clip.Data) == 0 {
		return nil, fmt.Errorf("empty clip")
	}

	samples := make([]int, len(clip.Data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(clip.Data[i*2:])))
	}

	var buf writeSeekBuffer
	enc := wav.NewEncoder(&buf, clip.Format.SampleRate, audio.BitDepth, clip.Format.Channels, wavAudioFormat)

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: clip.Format.Channels,
			SampleRate:  clip.Format.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: audio.BitDepth,
	}

	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("failed to encode clip: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize envelope: %w", err)
	}

	return buf.Bytes(), nil
}

// writeSeekBuffer is an in-memory io.WriteSeeker. The WAV encoder seeks
// back to patch chunk sizes after writing sample data, which bytes.Buffer
// cannot do.
type writeSeekBuffer struct {
	data []byte
	pos  int
}

func (b *writeSeekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		if need > cap(b.data) {
			grown := make([]byte, need, need*2)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:need]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *writeSeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case 0: // io.SeekStart
		pos = offset
	case 1: // io.SeekCurrent
		pos = int64(b.pos) + offset
	case 2: // io.SeekEnd
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position: %d", pos)
	}
	b.pos = int(pos)
	return pos, nil
}

// Bytes returns the encoded envelope.
func (b *writeSeekBuffer) Bytes() []byte {
	return b.data
}
