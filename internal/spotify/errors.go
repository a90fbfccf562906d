package spotify

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Sentinel errors.
var (
	// ErrNoRefreshToken is returned by Refresh when the credential has no
	// refresh token to present. The caller should send the user back
	// through the authorization flow.
	ErrNoRefreshToken = errors.New("credential has no refresh token")

	// ErrUpstreamUnavailable wraps transport-level failures reaching
	// Spotify, as opposed to Spotify rejecting the request.
	ErrUpstreamUnavailable = errors.New("spotify unreachable")
)

// AuthError indicates Spotify rejected the credentials, authorization code,
// or token. The upstream payload is preserved for display and logging.
type AuthError struct {
	Status  int
	Payload string
}

func (e *AuthError) Error() string {
	if e.Payload != "" {
		return fmt.Sprintf("spotify rejected authorization (status %d): %s", e.Status, e.Payload)
	}
	return fmt.Sprintf("spotify rejected authorization (status %d)", e.Status)
}

// MalformedResponseError indicates a response that parsed but lacks a
// required field. Distinct from a successful empty result.
type MalformedResponseError struct {
	Field string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("spotify response missing %s", e.Field)
}

// Classify maps oauth2, API and transport errors onto the package taxonomy:
// *AuthError for rejected credentials, ErrUpstreamUnavailable for everything
// that never produced a usable response. Errors already in the taxonomy pass
// through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var authErr *AuthError
	var malformed *MalformedResponseError
	if errors.As(err, &authErr) || errors.As(err, &malformed) ||
		errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrNoRefreshToken) {
		return err
	}

	// Token endpoint rejections carry the upstream body.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &AuthError{Status: status, Payload: string(retrieveErr.Body)}
	}

	// Resource endpoint rejections surface as the API error object.
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			return &AuthError{Status: apiErr.Status, Payload: apiErr.Message}
		}
		return fmt.Errorf("%w: api status %d: %s", ErrUpstreamUnavailable, apiErr.Status, apiErr.Message)
	}

	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
