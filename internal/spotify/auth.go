// Package spotify wraps the Spotify Web API and the OAuth2 token lifecycle
// behind it.
package spotify

import (
	"context"
	"errors"
	"strings"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// ExpiryMargin is subtracted from the credential expiry when deciding
// whether a refresh is needed. Absorbs clock skew and the latency between
// the check and the API call that follows.
const ExpiryMargin = 60 * time.Second

// CredentialState describes where a credential sits in its lifecycle.
type CredentialState int

const (
	// StateMissing means no access token has been obtained.
	StateMissing CredentialState = iota

	// StateValid means the access token is usable without a refresh.
	StateValid

	// StateExpiring means the token is within ExpiryMargin of expiry, or
	// past it. The caller should refresh before using the token.
	StateExpiring
)

// Credential holds the OAuth2 token state for one user session. Mutated only
// by the TokenManager transitions Exchange and Refresh.
type Credential struct {
	AccessToken  string
	RefreshToken string // may be empty; Spotify does not always issue one
	ExpiresAt    time.Time
}

// State reports the credential lifecycle state at the given instant.
func (c Credential) State(now time.Time) CredentialState {
	switch {
	case c.AccessToken == "":
		return StateMissing
	case !now.Before(c.ExpiresAt.Add(-ExpiryMargin)):
		return StateExpiring
	default:
		return StateValid
	}
}

// TokenManager owns the two transitions that produce or renew a Credential:
// authorization-code exchange and refresh. It performs no retries and no
// automatic refresh; expiry decisions belong to the caller.
type TokenManager struct {
	conf *oauth2.Config
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithEndpoint overrides the authorization and token endpoints. Tests use
// this to point the manager at a local server.
func WithEndpoint(authURL, tokenURL string) Option {
	return func(m *TokenManager) {
		m.conf.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
}

// NewTokenManager creates a TokenManager for the given Spotify application.
// The redirect URI must byte-match the one registered with Spotify.
func NewTokenManager(clientID, clientSecret, redirectURI string, opts ...Option) *TokenManager {
	m := &TokenManager{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				spotifyauth.ScopeUserTopRead,
				spotifyauth.ScopePlaylistModifyPrivate,
				spotifyauth.ScopePlaylistReadPrivate,
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AuthURL returns the upstream authorization page the user's browser is
// redirected to. state is echoed back on the callback for CSRF validation.
func (m *TokenManager) AuthURL(state string) string {
	return m.conf.AuthCodeURL(state)
}

// Exchange trades an authorization code for a Credential via the token
// endpoint. The credential's expiry is the receipt time plus the lifetime
// Spotify declares. Fails with *AuthError when Spotify rejects the code
// (the upstream payload is preserved) and with *MalformedResponseError when
// the response lacks a usable access token or lifetime.
func (m *TokenManager) Exchange(ctx context.Context, code string) (Credential, error) {
	tok, err := m.conf.Exchange(ctx, code)
	if err != nil {
		// x/oauth2 reports a 2xx response without an access_token as a
		// plain error, not a *RetrieveError.
		var retrieveErr *oauth2.RetrieveError
		if !errors.As(err, &retrieveErr) && strings.Contains(err.Error(), "missing access_token") {
			return Credential{}, &MalformedResponseError{Field: "access_token"}
		}
		return Credential{}, Classify(err)
	}

	if tok.Expiry.IsZero() {
		return Credential{}, &MalformedResponseError{Field: "expires_in"}
	}

	return Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// Refresh renews the access token using the credential's refresh token.
// Returns ErrNoRefreshToken when the credential has none. Spotify does not
// guarantee rotation: when the response omits a refresh token the existing
// one is retained, and when it omits a lifetime the prior expiry stands.
func (m *TokenManager) Refresh(ctx context.Context, cred Credential) (Credential, error) {
	if cred.RefreshToken == "" {
		return Credential{}, ErrNoRefreshToken
	}

	// The supplied token has no access token, so the source refreshes
	// immediately rather than returning a cached value.
	src := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if !errors.As(err, &retrieveErr) && strings.Contains(err.Error(), "missing access_token") {
			return Credential{}, &MalformedResponseError{Field: "access_token"}
		}
		return Credential{}, Classify(err)
	}

	next := Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = cred.RefreshToken
	}
	if tok.Expiry.IsZero() {
		next.ExpiresAt = cred.ExpiresAt
	}
	return next, nil
}
