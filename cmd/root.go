/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "needledrop",
	Short: "Vinyl scrobbler for Last.fm",
	Long: `needledrop listens to a line-in audio source, identifies what is
playing through an acoustic fingerprint service, and scrobbles confirmed
tracks to Last.fm.

It is built for turntables and other analog sources that have no "now
playing" metadata: the daemon samples the input several times per check
and only logs a track once a majority of samples agree on it.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags can be added here if needed
}
