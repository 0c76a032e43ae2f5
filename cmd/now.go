/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/needledrop/internal/scrobbler"
)

const defaultNowFormat = "{{.Artist}} - {{.Title}}"

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Display the most recently confirmed track",
	Long: `Display the most recent track confirmed by the recognition daemon.

The output format is a Go template. Available fields: .Artist, .Title,
.PlayedAt, .Scrobbled

Exit codes:
  0 - A track has been confirmed
  1 - The play history is empty or unavailable`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	nowCmd.Flags().StringP("format", "f", defaultNowFormat, "Output format template")
	// Fixed-width output for tmux status lines and similar surfaces
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled)")
	nowCmd.Flags().StringVar(&daemonDataDir, "data-dir", "", "Data directory for the play history (default: ~/.local/share/needledrop)")
}

func runNow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	history, err := scrobbler.NewHistory(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return fmt.Errorf("failed to open play history: %w", err)
	}
	defer func() { _ = history.Close() }()

	play, err := history.Last(ctx)
	if err != nil {
		return fmt.Errorf("failed to read play history: %w", err)
	}

	// Nothing confirmed yet, exit with code 1
	if play == nil {
		os.Exit(1)
		return nil
	}

	format, _ := cmd.Flags().GetString("format")
	output, err := formatPlay(play, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	width, _ := cmd.Flags().GetInt("width")
	if width > 0 {
		output = padToWidth(output, width)
	}

	fmt.Println(output)
	return nil
}

// formatPlay applies the template to the play data
func formatPlay(play *scrobbler.Play, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, play); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		// Truncate with "..." suffix
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			// If width is too small, just return ellipsis truncated to width
			return runewidth.Truncate(ellipsis, width, "")
		}

		// Truncate to (width - ellipsisWidth) and add ellipsis
		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Ensure we're exactly at the target width (in case truncate was imprecise)
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			padding := strings.Repeat(" ", width-resultWidth)
			return result + padding
		} else if resultWidth > width {
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		// Pad with spaces
		padding := strings.Repeat(" ", width-currentWidth)
		return text + padding
	}

	return text // exactly the right width
}
