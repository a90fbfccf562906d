package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solenne/spotify-top-sync/internal/spotify"
)

func testCredential() spotify.Credential {
	return spotify.Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore()

	session := store.Create(testCredential())
	if session.ID == "" {
		t.Fatal("Create() returned session with empty ID")
	}

	got := store.Get(session.ID)
	if got == nil {
		t.Fatal("Get() returned nil for a live session")
	}
	if got.Credential.AccessToken != "access" {
		t.Errorf("AccessToken = %q, want access", got.Credential.AccessToken)
	}
	if got.Credential.RefreshToken != "refresh" {
		t.Error("refresh token not stored with the session")
	}
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store := NewSessionStore()
	if got := store.Get("nope"); got != nil {
		t.Errorf("Get() = %v, want nil for unknown ID", got)
	}
}

func TestSessionStore_ExpiredSession(t *testing.T) {
	store := NewSessionStore()
	session := store.Create(testCredential())

	// Advance the store's clock past the TTL.
	store.now = func() time.Time { return time.Now().Add(sessionTTL + time.Minute) }

	if got := store.Get(session.ID); got != nil {
		t.Error("Get() returned an expired session")
	}
}

func TestSessionStore_UpdateCredential(t *testing.T) {
	store := NewSessionStore()
	session := store.Create(testCredential())

	next := spotify.Credential{
		AccessToken:  "rotated",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(2 * time.Hour),
	}
	store.UpdateCredential(session.ID, next)

	got := store.Get(session.ID)
	if got == nil {
		t.Fatal("Get() returned nil after update")
	}
	if got.Credential.AccessToken != "rotated" {
		t.Errorf("AccessToken = %q, want rotated", got.Credential.AccessToken)
	}
	if got.ID != session.ID {
		t.Error("update changed the session ID")
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore()
	session := store.Create(testCredential())

	store.Delete(session.ID)
	if got := store.Get(session.ID); got != nil {
		t.Error("Get() returned a deleted session")
	}
}

func TestSessionStore_GetFromRequest(t *testing.T) {
	store := NewSessionStore()
	session := store.Create(testCredential())

	r := httptest.NewRequest(http.MethodGet, "/sync", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})

	if got := store.GetFromRequest(r); got == nil || got.ID != session.ID {
		t.Error("GetFromRequest() did not resolve the cookie session")
	}

	bare := httptest.NewRequest(http.MethodGet, "/sync", nil)
	if got := store.GetFromRequest(bare); got != nil {
		t.Error("GetFromRequest() returned a session for a cookie-less request")
	}
}

func TestSessionStore_Cookies(t *testing.T) {
	store := NewSessionStore()
	session := store.Create(testCredential())

	w := httptest.NewRecorder()
	store.SetCookie(w, session)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("SetCookie() set %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != sessionCookieName || c.Value != session.ID {
		t.Errorf("cookie = %s=%s, want %s=%s", c.Name, c.Value, sessionCookieName, session.ID)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	w = httptest.NewRecorder()
	store.ClearCookie(w)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Error("ClearCookie() did not expire the cookie")
	}
}
