package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/needledrop/internal/audio"
	"github.com/jfmyers9/needledrop/internal/config"
	"github.com/jfmyers9/needledrop/internal/recognizer"
	"github.com/jfmyers9/needledrop/pkg/shazam"
)

// identifyCmd represents the identify command
var identifyCmd = &cobra.Command{
	Use:   "identify <file.wav>",
	Short: "Identify a track from a WAV file",
	Long: `Submit a WAV recording to the recognition service and print what it
identifies. Useful for testing API credentials and capture quality
without running the daemon.

The file should be a short clip (around five seconds) of 16-bit PCM.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Shazam.APIKey == "" {
		return fmt.Errorf("recognition API key not configured; set shazam.api_key in the config file")
	}

	clip, err := readWAV(args[0])
	if err != nil {
		return err
	}

	client, err := shazam.NewClient(shazam.Config{
		APIKey:  cfg.Shazam.APIKey,
		BaseURL: cfg.Shazam.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create recognition client: %w", err)
	}

	logger := setupLogger("", "warn")
	gateway := recognizer.NewGateway(client, cfg.Detection.ConfidenceThreshold, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome := gateway.Identify(ctx, clip)
	if !outcome.Matched() {
		fmt.Println("No match.")
		fmt.Printf("Clip: %.1fs, rms %.0f, peak %.0f\n",
			clip.Duration().Seconds(), audio.RMS(clip.Data), audio.Peak(clip.Data))
		os.Exit(1)
		return nil
	}

	fmt.Printf("%s - %s (confidence %.2f)\n", outcome.Artist, outcome.Title, outcome.Confidence)
	return nil
}

// readWAV decodes a WAV file into a PCM clip.
func readWAV(path string) (audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if dec.BitDepth != audio.BitDepth {
		return audio.Clip{}, fmt.Errorf("unsupported bit depth %d, want %d", dec.BitDepth, audio.BitDepth)
	}

	data := make([]byte, len(buf.Data)*2)
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(sample)))
	}

	return audio.Clip{
		Format: audio.Format{
			SampleRate: buf.Format.SampleRate,
			Channels:   buf.Format.NumChannels,
		},
		Data: data,
	}, nil
}
