package lastfm

import (
	"context"
	"net/http"
	"testing"
)

func TestMobileSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.Form.Get("method"); got != "auth.getMobileSession" {
			t.Errorf("method = %q, want auth.getMobileSession", got)
		}
		if got := r.Form.Get("username"); got != "vinyluser" {
			t.Errorf("username = %q", got)
		}
		if got := r.Form.Get("authToken"); got == "" {
			t.Error("missing authToken")
		}
		// getMobileSession itself must not require a session key
		if got := r.Form.Get("sk"); got != "" {
			t.Errorf("unexpected session key in auth request: %q", got)
		}

		_, _ = w.Write([]byte(`<lfm status="ok">
			<session>
				<name>vinyluser</name>
				<key>new_session_key</key>
				<subscriber>0</subscriber>
			</session>
		</lfm>`))
	})

	session, err := client.MobileSession(context.Background(), "vinyluser", PasswordHash("hunter2"))
	if err != nil {
		t.Fatalf("MobileSession() error: %v", err)
	}

	if session.Key != "new_session_key" {
		t.Errorf("Key = %q, want new_session_key", session.Key)
	}
	if session.Username != "vinyluser" {
		t.Errorf("Username = %q", session.Username)
	}
	if session.Subscriber {
		t.Error("Subscriber should be false")
	}
	if client.SessionKey() != "new_session_key" {
		t.Errorf("client session key not updated, got %q", client.SessionKey())
	}
}

func TestMobileSessionEmptyKey(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<lfm status="ok"><session><name>u</name><key></key></session></lfm>`))
	})

	if _, err := client.MobileSession(context.Background(), "u", PasswordHash("p")); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestMobileSessionRequiresCredentials(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", APISecret: "s"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if _, err := client.MobileSession(context.Background(), "", "hash"); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := client.MobileSession(context.Background(), "user", ""); err == nil {
		t.Error("expected error for empty password hash")
	}
}

func TestPasswordHash(t *testing.T) {
	// md5("password")
	want := "5f4dcc3b5aa765d61d8327deb882cf99"
	if got := PasswordHash("password"); got != want {
		t.Errorf("PasswordHash() = %q, want %q", got, want)
	}
}

func TestSignature(t *testing.T) {
	params := map[string]string{
		"method":  "auth.getMobileSession",
		"api_key": "key",
	}

	// Signature must be stable regardless of map iteration order
	first := signature(params, "secret")
	for i := 0; i < 10; i++ {
		if got := signature(params, "secret"); got != first {
			t.Fatal("signature is not deterministic")
		}
	}

	if signature(params, "secret") == signature(params, "other") {
		t.Error("signature should depend on the secret")
	}
}
