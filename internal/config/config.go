package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Audio capture settings
	Audio AudioConfig

	// Recognition and confirmation settings
	Detection DetectionConfig

	// Shazam recognition service credentials
	Shazam ShazamConfig

	// Last.fm API credentials
	LastFM LastFMConfig
}

// AudioConfig holds audio capture configuration
type AudioConfig struct {
	// Input device identifier; empty selects the platform default
	Device string

	SampleRate int `validate:"gt=0"`
	Channels   int `validate:"oneof=1 2"`
}

// DetectionConfig holds track confirmation configuration
type DetectionConfig struct {
	// Recognition rounds per confirmation attempt
	Rounds int `validate:"gt=0"`

	// Matching rounds required to confirm a track
	Majority int `validate:"gt=0,ltefield=Rounds"`

	// Seconds of audio captured per round
	WindowSeconds int `validate:"gt=0"`

	// Seconds between rounds
	RoundDelaySeconds int `validate:"gte=0"`

	// Seconds between confirmation attempts
	CheckIntervalSeconds int `validate:"gte=0"`

	// Minimum confidence for a recognition to count
	ConfidenceThreshold float64 `validate:"gte=0,lte=1"`
}

// ShazamConfig holds recognition service configuration
type ShazamConfig struct {
	APIKey  string
	BaseURL string
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey       string
	APISecret    string
	Username     string
	PasswordHash string
	SessionKey   string
}

// ScrobblingEnabled reports whether enough Last.fm credentials are
// present to submit plays. Missing credentials disable scrobbling but
// never prevent recognition from running.
func (c *Config) ScrobblingEnabled() bool {
	if c.LastFM.APIKey == "" || c.LastFM.APISecret == "" {
		return false
	}
	return c.LastFM.SessionKey != "" || (c.LastFM.Username != "" && c.LastFM.PasswordHash != "")
}

// Window returns the capture duration per recognition round.
func (c *DetectionConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// RoundDelay returns the pause between recognition rounds.
func (c *DetectionConfig) RoundDelay() time.Duration {
	return time.Duration(c.RoundDelaySeconds) * time.Second
}

// CheckInterval returns the pause between confirmation attempts.
func (c *DetectionConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("audio.sample_rate", 48000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("detection.rounds", 3)
	v.SetDefault("detection.majority", 2)
	v.SetDefault("detection.window_seconds", 5)
	v.SetDefault("detection.round_delay_seconds", 1)
	v.SetDefault("detection.check_interval_seconds", 3)
	v.SetDefault("detection.confidence_threshold", 0.5)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables
	v.SetEnvPrefix("NEEDLEDROP")
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		Audio: AudioConfig{
			Device:     v.GetString("audio.device"),
			SampleRate: v.GetInt("audio.sample_rate"),
			Channels:   v.GetInt("audio.channels"),
		},
		Detection: DetectionConfig{
			Rounds:               v.GetInt("detection.rounds"),
			Majority:             v.GetInt("detection.majority"),
			WindowSeconds:        v.GetInt("detection.window_seconds"),
			RoundDelaySeconds:    v.GetInt("detection.round_delay_seconds"),
			CheckIntervalSeconds: v.GetInt("detection.check_interval_seconds"),
			ConfidenceThreshold:  v.GetFloat64("detection.confidence_threshold"),
		},
		Shazam: ShazamConfig{
			APIKey:  v.GetString("shazam.api_key"),
			BaseURL: v.GetString("shazam.base_url"),
		},
		LastFM: LastFMConfig{
			APIKey:       v.GetString("lastfm.api_key"),
			APISecret:    v.GetString("lastfm.api_secret"),
			Username:     v.GetString("lastfm.username"),
			PasswordHash: v.GetString("lastfm.password_hash"),
			SessionKey:   v.GetString("lastfm.session_key"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "needledrop")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("audio.device", c.Audio.Device)
	v.Set("audio.sample_rate", c.Audio.SampleRate)
	v.Set("audio.channels", c.Audio.Channels)
	v.Set("detection.rounds", c.Detection.Rounds)
	v.Set("detection.majority", c.Detection.Majority)
	v.Set("detection.window_seconds", c.Detection.WindowSeconds)
	v.Set("detection.round_delay_seconds", c.Detection.RoundDelaySeconds)
	v.Set("detection.check_interval_seconds", c.Detection.CheckIntervalSeconds)
	v.Set("detection.confidence_threshold", c.Detection.ConfidenceThreshold)
	v.Set("shazam.api_key", c.Shazam.APIKey)
	v.Set("shazam.base_url", c.Shazam.BaseURL)
	v.Set("lastfm.api_key", c.LastFM.APIKey)
	v.Set("lastfm.api_secret", c.LastFM.APISecret)
	v.Set("lastfm.username", c.LastFM.Username)
	v.Set("lastfm.password_hash", c.LastFM.PasswordHash)
	v.Set("lastfm.session_key", c.LastFM.SessionKey)

	// Write to file
	return v.WriteConfigAs(configFile)
}
