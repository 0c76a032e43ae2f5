package config

import (
	"testing"
	"time"
)

func defaultTestConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 48000,
			Channels:   1,
		},
		Detection: DetectionConfig{
			Rounds:               3,
			Majority:             2,
			WindowSeconds:        5,
			RoundDelaySeconds:    1,
			CheckIntervalSeconds: 3,
			ConfidenceThreshold:  0.5,
		},
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := defaultTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"three channels", func(c *Config) { c.Audio.Channels = 3 }},
		{"zero rounds", func(c *Config) { c.Detection.Rounds = 0 }},
		{"majority above rounds", func(c *Config) { c.Detection.Majority = 4 }},
		{"negative round delay", func(c *Config) { c.Detection.RoundDelaySeconds = -1 }},
		{"confidence above one", func(c *Config) { c.Detection.ConfidenceThreshold = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDetectionDurations(t *testing.T) {
	d := DetectionConfig{WindowSeconds: 5, RoundDelaySeconds: 1, CheckIntervalSeconds: 3}

	if got := d.Window(); got != 5*time.Second {
		t.Errorf("Window() = %v", got)
	}
	if got := d.RoundDelay(); got != time.Second {
		t.Errorf("RoundDelay() = %v", got)
	}
	if got := d.CheckInterval(); got != 3*time.Second {
		t.Errorf("CheckInterval() = %v", got)
	}
}

func TestScrobblingEnabled(t *testing.T) {
	tests := []struct {
		name   string
		lastfm LastFMConfig
		want   bool
	}{
		{"no credentials", LastFMConfig{}, false},
		{"api key only", LastFMConfig{APIKey: "k", APISecret: "s"}, false},
		{"session key", LastFMConfig{APIKey: "k", APISecret: "s", SessionKey: "sk"}, true},
		{"username and password", LastFMConfig{APIKey: "k", APISecret: "s", Username: "u", PasswordHash: "h"}, true},
		{"username without password", LastFMConfig{APIKey: "k", APISecret: "s", Username: "u"}, false},
		{"session without api key", LastFMConfig{SessionKey: "sk"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			cfg.LastFM = tt.lastfm
			if got := cfg.ScrobblingEnabled(); got != tt.want {
				t.Errorf("ScrobblingEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
