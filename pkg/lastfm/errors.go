package lastfm

import "fmt"

// Error represents a Last.fm API error.
type Error struct {
	Code    int    // Last.fm error code
	Message string // Error message from Last.fm
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is allows errors.Is() comparisons by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Temporary returns true if the error is temporary and the request
// should be retried: 11 (Service Offline) and 16 (Service Temporarily
// Unavailable).
func (e *Error) Temporary() bool {
	switch e.Code {
	case ErrCodeServiceOffline, ErrCodeTempUnavailable:
		return true
	default:
		return false
	}
}

// Last.fm error codes used by this client.
const (
	ErrCodeAuthenticationFailed = 4
	ErrCodeInvalidSessionKey    = 9
	ErrCodeInvalidAPIKey        = 10
	ErrCodeServiceOffline       = 11
	ErrCodeInvalidSignature     = 13
	ErrCodeTempUnavailable      = 16
	ErrCodeRateLimitExceeded    = 29
)

// ErrNoSessionKey is returned when an operation requires authentication
// but no session key has been set.
var ErrNoSessionKey = fmt.Errorf("lastfm: session key required")
