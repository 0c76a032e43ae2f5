// Package shazam provides a client for a Shazam-compatible song
// recognition HTTP API.
//
// The client submits a short audio clip and receives a structured
// recognition result with the matched track's title and artist, if any.
// It is designed to be used as a standalone SDK.
//
// Example usage:
//
//	import "github.com/jfmyers9/needledrop/pkg/shazam"
//
//	client, err := shazam.NewClient(shazam.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Recognize(ctx, clip)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Matched() {
//	    fmt.Println(result.Track.Subtitle, "-", result.Track.Title)
//	}
package shazam

import (
	"fmt"
	"net/http"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: recognition API key
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: base URL for the API (defaults to the hosted service, used for testing)
	Logger     Logger       // Optional: logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client submits audio clips to the recognition service.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     Logger
}

const (
	// DefaultBaseURL is the default recognition API endpoint.
	DefaultBaseURL = "https://shazam.p.rapidapi.com"

	// detectPath is the song detection endpoint. It accepts a base64
	// encoded audio clip in the request body.
	detectPath = "/songs/v2/detect"
)

// NewClient creates a new recognition API client.
//
// Returns an error if the required APIKey is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("shazam: APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}, nil
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
