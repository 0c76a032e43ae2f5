package lastfm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
)

// Session is an authenticated Last.fm session.
type Session struct {
	Key        string // Session key for authenticated requests
	Username   string // Last.fm username
	Subscriber bool   // Whether the user is a subscriber
}

// MobileSession authenticates with a username and password hash via
// auth.getMobileSession and stores the resulting session key on the
// client. Session keys do not expire; callers should persist the key
// rather than re-authenticating on every start.
//
// passwordHash is the md5 hex digest of the account password; use
// PasswordHash to compute it.
func (c *Client) MobileSession(ctx context.Context, username, passwordHash string) (*Session, error) {
	if username == "" || passwordHash == "" {
		return nil, fmt.Errorf("lastfm: username and password hash are required")
	}

	params := map[string]string{
		"username":  username,
		"authToken": authToken(username, passwordHash),
	}

	inner, err := c.call(ctx, "auth.getMobileSession", params, false)
	if err != nil {
		return nil, err
	}

	session, err := unmarshalSession(inner)
	if err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse session response: %w", err)
	}
	if session.Key == "" {
		return nil, fmt.Errorf("lastfm: received empty session key")
	}

	c.sessionKey = session.Key
	return session, nil
}

// PasswordHash returns the md5 hex digest Last.fm expects for
// password-based authentication.
func PasswordHash(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// authToken computes md5(username + md5(password)) per the mobile auth
// protocol.
func authToken(username, passwordHash string) string {
	sum := md5.Sum([]byte(username + passwordHash))
	return hex.EncodeToString(sum[:])
}

// sessionResponse is the XML payload of auth.getMobileSession.
type sessionResponse struct {
	Name       string `xml:"session>name"`
	Key        string `xml:"session>key"`
	Subscriber int    `xml:"session>subscriber"`
}

func unmarshalSession(data []byte) (*Session, error) {
	wrapped := []byte("<root>" + string(data) + "</root>")

	var resp sessionResponse
	if err := xml.Unmarshal(wrapped, &resp); err != nil {
		return nil, err
	}

	return &Session{
		Key:        resp.Key,
		Username:   resp.Name,
		Subscriber: resp.Subscriber == 1,
	}, nil
}
