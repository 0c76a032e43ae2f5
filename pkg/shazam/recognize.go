package shazam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Recognize submits an audio clip for identification and returns the
// decoded result. The clip must already be packaged in the envelope the
// service expects (container, channel count, sample rate, bit depth);
// the caller is responsible for that packaging.
//
// The call blocks until a reply or failure. Transient failures (network
// errors, 5xx, rate limiting) are retried with exponential backoff;
// other errors are returned as *Error.
func (c *Client) Recognize(ctx context.Context, envelope []byte) (*Result, error) {
	if len(envelope) == 0 {
		return nil, fmt.Errorf("shazam: empty audio clip")
	}

	body := base64.StdEncoding.EncodeToString(envelope)

	var lastErr error
	backoff := 1 * time.Second
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		c.logDebugf("shazam: detect request, %d bytes (attempt %d/%d)", len(envelope), i+1, maxRetries)

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+detectPath, bytes.NewReader([]byte(body)))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("User-Agent", "needledrop/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("shazam: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &Error{StatusCode: resp.StatusCode, Message: string(respBody)}
			if apiErr.Temporary() && i < maxRetries-1 {
				c.logDebugf("shazam: temporary error, retrying: %v", apiErr)
				lastErr = apiErr
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, apiErr
		}

		var result Result
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse recognition response: %w", err)
		}

		c.logDebugf("shazam: detect succeeded, matched=%v", result.Matched())
		return &result, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
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
