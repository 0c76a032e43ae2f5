package scrobbler

import (
	"context"
	"fmt"
	"time"

	"github.com/jfmyers9/needledrop/pkg/lastfm"
)

// Client wraps the Last.fm API client.
type Client struct {
	client *lastfm.Client
}

// New creates a new Last.fm client without a session.
func New(apiKey, apiSecret string) (*Client, error) {
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lastfm client: %w", err)
	}
	return &Client{client: client}, nil
}

// NewWithSession creates a new Last.fm client with an existing session key.
func NewWithSession(apiKey, apiSecret, sessionKey string) (*Client, error) {
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:     apiKey,
		APISecret:  apiSecret,
		SessionKey: sessionKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lastfm client: %w", err)
	}
	return &Client{client: client}, nil
}

// Authenticate performs password-based authentication and returns the
// session key that should be stored for future use.
func (c *Client) Authenticate(ctx context.Context, username, passwordHash string) (string, error) {
	session, err := c.client.MobileSession(ctx, username, passwordHash)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	return session.Key, nil
}

// Submit scrobbles a single play.
func (c *Client) Submit(ctx context.Context, artist, title string, timestamp time.Time) error {
	if _, err := c.client.Scrobble(ctx, artist, title, timestamp); err != nil {
		return fmt.Errorf("failed to scrobble track: %w", err)
	}
	return nil
}

// IsAuthenticated checks if the client has a session key.
func (c *Client) IsAuthenticated() bool {
	return c.client.SessionKey() != ""
}

// SessionKey returns the current session key.
func (c *Client) SessionKey() string {
	return c.client.SessionKey()
}
