package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/solenne/spotify-top-sync/internal/spotify"
	"github.com/solenne/spotify-top-sync/internal/syncer"
)

const stateCookieName = "oauth_state"

// Handlers contains the HTTP handlers for the application.
type Handlers struct {
	tokens       *spotify.TokenManager
	sessions     SessionManager
	templates    *Templates
	syncer       *syncer.Service
	playlistName string
	logger       *zap.Logger

	// Seams for tests: clock and API construction.
	now    func() time.Time
	newAPI func(ctx context.Context, cred spotify.Credential) syncer.API
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tokens *spotify.TokenManager, sessions SessionManager, templates *Templates, sync *syncer.Service, playlistName string, logger *zap.Logger) *Handlers {
	return &Handlers{
		tokens:       tokens,
		sessions:     sessions,
		templates:    templates,
		syncer:       sync,
		playlistName: playlistName,
		logger:       logger,
		now:          time.Now,
		newAPI: func(ctx context.Context, cred spotify.Credential) syncer.API {
			return spotify.NewClient(ctx, cred)
		},
	}
}

// Home renders the landing page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		PageData:     PageData{Title: "Spotify Top Sync"},
		PlaylistName: h.playlistName,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "home", data); err != nil {
		h.logger.Error("rendering home page", zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// Login initiates the Spotify OAuth flow (GET /login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in a cookie for validation on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.tokens.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback). On
// success the credential is stored in the session and the browser is sent
// on to /sync.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	// A denied or failed authorization arrives as an error parameter.
	// No exchange is attempted in that case.
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.renderError(w, http.StatusBadRequest, ErrorPageData{
			PageData:  PageData{Title: "Authorization failed"},
			Message:   "Spotify reported: " + errMsg,
			ShowLogin: true,
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	// Clear the state cookie; it is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	cred, err := h.tokens.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("exchanging authorization code", zap.Error(err))
		h.renderClassifiedError(w, err)
		return
	}

	session := h.sessions.Create(cred)
	h.sessions.SetCookie(w, session)

	http.Redirect(w, r, "/sync", http.StatusTemporaryRedirect)
}

// Sync runs a synchronization for the session's user (GET /sync). An
// expiring token is refreshed first; a session that cannot be refreshed is
// dropped and the browser sent back through the login flow.
func (h *Handlers) Sync(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return
	}

	cred := session.Credential
	switch cred.State(h.now()) {
	case spotify.StateMissing:
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
		return

	case spotify.StateExpiring:
		refreshed, err := h.tokens.Refresh(r.Context(), cred)
		if err != nil {
			var authErr *spotify.AuthError
			if errors.Is(err, spotify.ErrNoRefreshToken) || errors.As(err, &authErr) {
				// Re-authorization is one redirect away; do not
				// strand the user on an error page.
				h.logger.Warn("refresh impossible, forcing re-authorization", zap.Error(err))
				h.sessions.Delete(session.ID)
				h.sessions.ClearCookie(w)
				http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
				return
			}
			h.logger.Error("refreshing token", zap.Error(err))
			h.renderClassifiedError(w, err)
			return
		}
		h.sessions.UpdateCredential(session.ID, refreshed)
		cred = refreshed
	}

	api := h.newAPI(r.Context(), cred)
	result, err := h.syncer.Sync(r.Context(), api, h.playlistName)
	if err != nil {
		h.logger.Error("synchronizing playlist", zap.Error(err))
		h.renderClassifiedError(w, err)
		return
	}

	h.logger.Info("sync run finished",
		zap.String("playlist_id", result.PlaylistID),
		zap.Int("tracks", result.TrackCount))
	http.Redirect(w, r, "/success", http.StatusTemporaryRedirect)
}

// Success renders the confirmation page (GET /success).
func (h *Handlers) Success(w http.ResponseWriter, r *http.Request) {
	data := SuccessPageData{
		PageData:     PageData{Title: "Playlist updated"},
		PlaylistName: h.playlistName,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "success", data); err != nil {
		h.logger.Error("rendering success page", zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// renderClassifiedError renders an error page, distinguishing rejected
// authorization (prompt to log in again) from upstream trouble (safe to
// retry manually).
func (h *Handlers) renderClassifiedError(w http.ResponseWriter, err error) {
	var authErr *spotify.AuthError
	if errors.As(err, &authErr) {
		h.renderError(w, http.StatusUnauthorized, ErrorPageData{
			PageData:  PageData{Title: "Authorization failed"},
			Message:   authErr.Error(),
			ShowLogin: true,
		})
		return
	}

	h.renderError(w, http.StatusBadGateway, ErrorPageData{
		PageData: PageData{Title: "Spotify error"},
		Message:  err.Error(),
	})
}

func (h *Handlers) renderError(w http.ResponseWriter, status int, data ErrorPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, "error", data); err != nil {
		h.logger.Error("rendering error page", zap.Error(err))
	}
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
