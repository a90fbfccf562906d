package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// topTracksLimit is the most tracks a single top-tracks request returns.
const topTracksLimit = 50

// Playlist is one entry in the user's playlist collection.
type Playlist struct {
	ID   string
	Name string
}

// Client wraps the Spotify Web API with one method per upstream call the
// synchronizer makes. The bearer token is fixed at construction: expiry
// checks and refresh belong to the caller, so no auto-refreshing transport
// is involved.
type Client struct {
	api *spotify.Client
}

// NewClient builds a Client authenticated with the credential's access
// token. Extra options are forwarded to the underlying library; tests use
// them to point the client at a local server.
func NewClient(ctx context.Context, cred Credential, opts ...spotify.ClientOption) *Client {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
	}))
	return &Client{api: spotify.New(httpClient, opts...)}
}

// UserID resolves the authenticated user's Spotify ID. This is the first
// call of a sync run, so a rejected or expired token surfaces here as
// *AuthError.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", Classify(err))
	}
	if user.ID == "" {
		return "", &MalformedResponseError{Field: "user id"}
	}
	return user.ID, nil
}

// TopTracks returns up to 50 of the user's most-played tracks over the
// short-term window, most played first. An empty list is a normal result
// for a new or inactive account, not an error.
func (c *Client) TopTracks(ctx context.Context) ([]string, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Limit(topTracksLimit),
		spotify.Timerange(spotify.ShortTermRange),
	)
	if err != nil {
		return nil, fmt.Errorf("getting top tracks: %w", Classify(err))
	}

	ids := make([]string, 0, len(page.Tracks))
	for _, track := range page.Tracks {
		ids = append(ids, track.ID.String())
	}
	return ids, nil
}

// Playlists returns the first page of the user's playlist collection.
// Accounts with more playlists than one page holds see an incomplete list;
// pagination is deliberately not handled.
func (c *Client) Playlists(ctx context.Context, userID string) ([]Playlist, error) {
	page, err := c.api.GetPlaylistsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting playlists: %w", Classify(err))
	}

	playlists := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		playlists = append(playlists, Playlist{ID: p.ID.String(), Name: p.Name})
	}
	return playlists, nil
}

// CreatePlaylist creates a private playlist for the user and returns its ID.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name string) (string, error) {
	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, "", false, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", Classify(err))
	}
	return playlist.ID.String(), nil
}

// ReplaceTracks overwrites the playlist's contents with exactly the given
// tracks, in order. No merge, no diff; replacing with an empty list empties
// the playlist. The library converts each ID to its spotify:track:<id> URI.
func (c *Client) ReplaceTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	if err := c.api.ReplacePlaylistTracks(ctx, spotify.ID(playlistID), ids...); err != nil {
		return fmt.Errorf("replacing playlist tracks: %w", Classify(err))
	}
	return nil
}
