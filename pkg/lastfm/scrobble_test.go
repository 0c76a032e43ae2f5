package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:     "test_key",
		APISecret:  "test_secret",
		SessionKey: "test_session",
		BaseURL:    server.URL,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client, server
}

func TestScrobbleAccepted(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.Form.Get("method"); got != "track.scrobble" {
			t.Errorf("method = %q, want track.scrobble", got)
		}
		if got := r.Form.Get("artist"); got != "Pink Floyd" {
			t.Errorf("artist = %q", got)
		}
		if got := r.Form.Get("track"); got != "Money" {
			t.Errorf("track = %q", got)
		}
		if got := r.Form.Get("timestamp"); got == "" {
			t.Error("missing timestamp")
		}
		if got := r.Form.Get("api_sig"); got == "" {
			t.Error("missing request signature")
		}

		_, _ = w.Write([]byte(`<lfm status="ok">
			<scrobbles accepted="1" ignored="0">
				<scrobble><artist>Pink Floyd</artist><track>Money</track></scrobble>
			</scrobbles>
		</lfm>`))
	})

	resp, err := client.Scrobble(context.Background(), "Pink Floyd", "Money", time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("Scrobble() error: %v", err)
	}
	if resp.Accepted != 1 || resp.Ignored != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestScrobbleIgnoredIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<lfm status="ok">
			<scrobbles accepted="0" ignored="1">
				<scrobble>
					<ignoredMessage code="1">Artist was ignored</ignoredMessage>
				</scrobble>
			</scrobbles>
		</lfm>`))
	})

	_, err := client.Scrobble(context.Background(), "Pink Floyd", "Money", time.Now())
	if err == nil {
		t.Fatal("expected error for ignored scrobble")
	}
	if !strings.Contains(err.Error(), "Artist was ignored") {
		t.Errorf("error should carry the ignore reason, got: %v", err)
	}
}

func TestScrobbleAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<lfm status="failed">
			<error code="9">Invalid session key - Please re-authenticate</error>
		</lfm>`))
	})

	_, err := client.Scrobble(context.Background(), "Pink Floyd", "Money", time.Now())
	if err == nil {
		t.Fatal("expected API error")
	}

	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Code != ErrCodeInvalidSessionKey {
		t.Errorf("Code = %d, want %d", apiErr.Code, ErrCodeInvalidSessionKey)
	}
	if apiErr.Temporary() {
		t.Error("invalid session key should not be temporary")
	}
}

func TestScrobbleRetriesTemporaryError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			_, _ = w.Write([]byte(`<lfm status="failed">
				<error code="16">Service temporarily unavailable</error>
			</lfm>`))
			return
		}
		_, _ = w.Write([]byte(`<lfm status="ok">
			<scrobbles accepted="1" ignored="0"><scrobble></scrobble></scrobbles>
		</lfm>`))
	})

	resp, err := client.Scrobble(context.Background(), "Pink Floyd", "Money", time.Now())
	if err != nil {
		t.Fatalf("Scrobble() error after retry: %v", err)
	}
	if resp.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", resp.Accepted)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestScrobbleRequiresSession(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", APISecret: "s"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	_, err = client.Scrobble(context.Background(), "Pink Floyd", "Money", time.Now())
	if err != ErrNoSessionKey {
		t.Errorf("expected ErrNoSessionKey, got %v", err)
	}
}

func TestScrobbleRequiresArtistAndTitle(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made")
	})

	if _, err := client.Scrobble(context.Background(), "", "Money", time.Now()); err == nil {
		t.Error("expected error for empty artist")
	}
	if _, err := client.Scrobble(context.Background(), "Pink Floyd", "", time.Now()); err == nil {
		t.Error("expected error for empty title")
	}
}
