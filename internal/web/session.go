// Package web provides the HTTP server and pages for the playlist sync
// application.
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solenne/spotify-top-sync/internal/spotify"
)

const (
	sessionCookieName = "session_id"
	sessionTTL        = 24 * time.Hour
)

// Session ties a browser to the credential it obtained via the login flow.
// The whole credential is stored, refresh token included, so a later visit
// can refresh without re-prompting the user.
type Session struct {
	ID         string
	Credential spotify.Credential
	CreatedAt  time.Time
}

// SessionManager is the session storage boundary. One credential per
// session key; nothing is persisted across restarts.
type SessionManager interface {
	Create(cred spotify.Credential) *Session
	Get(id string) *Session
	UpdateCredential(id string, cred spotify.Credential)
	Delete(id string)
	GetFromRequest(r *http.Request) *Session
	SetCookie(w http.ResponseWriter, session *Session)
	ClearCookie(w http.ResponseWriter)
}

// SessionStore manages user sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create stores a new session holding the credential.
func (s *SessionStore) Create(cred spotify.Credential) *Session {
	session := &Session{
		ID:         uuid.NewString(),
		Credential: cred,
		CreatedAt:  s.now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID. Expired sessions are not returned.
func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}

	if s.now().Sub(session.CreatedAt) > sessionTTL {
		return nil
	}

	return session
}

// UpdateCredential swaps the credential stored under the session ID.
func (s *SessionStore) UpdateCredential(id string, cred spotify.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.Credential = cred
	}
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// GetFromRequest extracts the session from the request cookie.
func (s *SessionStore) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.Get(cookie.Value)
}

// SetCookie sets the session cookie on the response.
func (s *SessionStore) SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
}

// ClearCookie removes the session cookie from the response.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

var _ SessionManager = (*SessionStore)(nil)
