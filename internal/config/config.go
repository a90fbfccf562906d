// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultRedirectURI must match the redirect URI registered with the
	// Spotify application. Explicit IPv4 loopback, as Spotify requires
	// for local development.
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"

	// DefaultPlaylistName is the playlist the synchronizer maintains.
	DefaultPlaylistName = "last month's top songs :-)"
)

// Sentinel errors.
var (
	// ErrMissingClientID is returned when SPOTIFY_ID is not set.
	ErrMissingClientID = errors.New("missing SPOTIFY_ID environment variable")

	// ErrMissingClientSecret is returned when SPOTIFY_SECRET is not set.
	ErrMissingClientSecret = errors.New("missing SPOTIFY_SECRET environment variable")
)

// Config holds the application configuration. Immutable after Load; both the
// token manager and the web server receive it at construction.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	PlaylistName string
	Addr         string
}

// Load reads configuration from environment variables, consulting a .env
// file in the working directory when one exists. Returns ErrMissingClientID
// or ErrMissingClientSecret when the Spotify credentials are absent.
func Load() (*Config, error) {
	// A missing .env file is not an error; the environment may already
	// be populated.
	_ = godotenv.Load()

	clientID := os.Getenv("SPOTIFY_ID")
	if clientID == "" {
		return nil, ErrMissingClientID
	}

	clientSecret := os.Getenv("SPOTIFY_SECRET")
	if clientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	cfg := &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  DefaultRedirectURI,
		PlaylistName: DefaultPlaylistName,
		Addr:         DefaultAddr,
	}

	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		cfg.RedirectURI = v
	}
	if v := os.Getenv("PLAYLIST_NAME"); v != "" {
		cfg.PlaylistName = v
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}

	return cfg, nil
}
