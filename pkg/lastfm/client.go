// Package lastfm implements the subset of the Last.fm API 2.0 that a
// scrobbler needs: password-based session authentication and track
// scrobbling.
//
// Example usage:
//
//	import "github.com/jfmyers9/needledrop/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:    "your-api-key",
//	    APISecret: "your-api-secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := client.MobileSession(ctx, "user", lastfm.PasswordHash("hunter2")); err != nil {
//	    log.Fatal(err)
//	}
//	_, err = client.Scrobble(ctx, "Pink Floyd", "Money", time.Now())
package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the default Last.fm API endpoint.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: Last.fm API key
	APISecret  string       // Required: Last.fm API secret
	SessionKey string       // Optional: session key from a previous authentication
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: base URL for API (defaults to Last.fm, used for testing)
	Logger     Logger       // Optional: logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client talks to the Last.fm API.
type Client struct {
	apiKey     string
	apiSecret  string
	sessionKey string
	httpClient *http.Client
	baseURL    string
	logger     Logger
}

// NewClient creates a new Last.fm API client.
//
// Returns an error if required configuration (APIKey, APISecret) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("lastfm: APISecret is required")
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
		apiSecret:  cfg.APISecret,
		sessionKey: cfg.SessionKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}, nil
}

// SetSessionKey sets the session key for authenticated requests.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
}

// SessionKey returns the current session key.
func (c *Client) SessionKey() string {
	return c.sessionKey
}

// base represents the root XML response from the Last.fm API.
type base struct {
	XMLName xml.Name `xml:"lfm"`
	Status  string   `xml:"status,attr"`
	Inner   []byte   `xml:",innerxml"`
}

// apiError represents an error payload inside a failed response.
type apiError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

const apiStatusFailed = "failed"

// call makes a signed POST request to the Last.fm API.
//
// Transient failures (network errors, 5xx, temporary API errors) are
// retried with exponential backoff; the context cancels both the request
// and the backoff wait.
func (c *Client) call(ctx context.Context, method string, params map[string]string, requiresAuth bool) ([]byte, error) {
	reqParams := make(map[string]string, len(params)+3)
	for k, v := range params {
		reqParams[k] = v
	}
	reqParams["method"] = method
	reqParams["api_key"] = c.apiKey

	if requiresAuth {
		if c.sessionKey == "" {
			return nil, ErrNoSessionKey
		}
		reqParams["sk"] = c.sessionKey
	}

	formData := url.Values{}
	for k, v := range reqParams {
		formData.Add(k, v)
	}
	formData.Add("api_sig", signature(reqParams, c.apiSecret))

	var lastErr error
	backoff := 1 * time.Second
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		c.logDebugf("lastfm: calling %s (attempt %d/%d)", method, i+1, maxRetries)

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, strings.NewReader(formData.Encode()))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", "needledrop/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if isNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("lastfm: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if i < maxRetries-1 {
				c.logDebugf("lastfm: server error, retrying: %v", lastErr)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, lastErr
		}
		if resp.StatusCode != http.StatusOK {
			// Last.fm reports API errors with non-200 codes too; try to
			// surface the structured error before the bare status
			if apiErr := parseAPIError(body); apiErr != nil {
				return nil, apiErr
			}
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var root base
		if err := xml.Unmarshal(body, &root); err != nil {
			return nil, fmt.Errorf("failed to parse XML response: %w", err)
		}

		if root.Status == apiStatusFailed {
			var payload apiError
			if err := xml.Unmarshal(root.Inner, &payload); err != nil {
				return nil, fmt.Errorf("failed to parse error response: %w", err)
			}
			apiErr := &Error{Code: payload.Code, Message: strings.TrimSpace(payload.Message)}

			if apiErr.Temporary() && i < maxRetries-1 {
				c.logDebugf("lastfm: temporary error, retrying: %v", apiErr)
				lastErr = apiErr
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, apiErr
		}

		c.logDebugf("lastfm: %s succeeded", method)
		return root.Inner, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// parseAPIError attempts to decode a failed <lfm> payload; returns nil
// if the body is not one.
func parseAPIError(body []byte) *Error {
	var root base
	if err := xml.Unmarshal(body, &root); err != nil || root.Status != apiStatusFailed {
		return nil
	}
	var payload apiError
	if err := xml.Unmarshal(root.Inner, &payload); err != nil {
		return nil
	}
	return &Error{Code: payload.Code, Message: strings.TrimSpace(payload.Message)}
}

// isNetworkError checks if an error is a (retryable) network error.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(net.Error); ok {
		return true
	}
	if urlErr, ok := err.(*url.Error); ok {
		if _, ok := urlErr.Err.(net.Error); ok {
			return true
		}
	}
	return false
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
