package shazam

import "fmt"

// Error represents a recognition API error response.
type Error struct {
	StatusCode int    // HTTP status code
	Message    string // Response body or status text
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("shazam: error %d: %s", e.StatusCode, e.Message)
}

// Temporary returns true if the error is temporary and the request
// should be retried. Server errors and rate limiting are temporary;
// client errors (bad key, bad request) are not.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
