package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
)

// Capture is a Source backed by an ffmpeg subprocess reading from a
// physical input device. ffmpeg handles device buffer overflow internally
// by dropping frames, so reads never fail for drops; the stream simply
// skips ahead.
type Capture struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	format Format
	logger zerolog.Logger
}

// NewCapture starts an ffmpeg capture process for the given device and
// returns a Source producing raw s16le PCM in the requested format.
// An empty device selects the platform default input.
func NewCapture(device string, format Format, logger zerolog.Logger) (*Capture, error) {
	name, args := captureCommand(device, format)

	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open capture pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start capture process: %w", err)
	}

	logger = logger.With().Str("component", "capture").Logger()
	logger.Info().
		Str("device", device).
		Int("sample_rate", format.SampleRate).
		Int("channels", format.Channels).
		Msg("Capture started")

	return &Capture{
		cmd:    cmd,
		stdout: stdout,
		format: format,
		logger: logger,
	}, nil
}

// Read blocks until the requested number of frames has been read from the
// capture stream. A cancelled context is only honored between reads; an
// in-flight read is allowed to finish since partial frames cannot be
// analyzed.
func (c *Capture) Read(ctx context.Context, frames int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, frames*c.format.BytesPerFrame())
	if _, err := io.ReadFull(c.stdout, buf); err != nil {
		return nil, fmt.Errorf("capture stream read failed: %w", err)
	}

	return buf, nil
}

// Format returns the session format the capture was opened with.
func (c *Capture) Format() Format {
	return c.format
}

// Close terminates the capture process.
func (c *Capture) Close() error {
	_ = c.stdout.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	// Kill makes Wait report an exit error; that is the expected shutdown path
	_ = c.cmd.Wait()
	c.logger.Debug().Msg("Capture stopped")
	return nil
}

// captureCommand builds the platform-specific ffmpeg invocation that
// writes raw s16le PCM to stdout.
func captureCommand(device string, format Format) (string, []string) {
	common := []string{
		"-hide_banner", "-loglevel", "error",
	}
	output := []string{
		"-ac", strconv.Itoa(format.Channels),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", "s16le",
		"pipe:1",
	}

	var input []string
	switch runtime.GOOS {
	case "darwin":
		if device == "" {
			device = "0"
		}
		input = []string{"-f", "avfoundation", "-i", ":" + device}
	case "windows":
		input = []string{"-f", "dshow", "-i", "audio=" + device}
	default:
		if device == "" {
			device = "default"
		}
		input = []string{"-f", "alsa", "-i", device}
	}

	args := append(append(common, input...), output...)
	return "ffmpeg", args
}
