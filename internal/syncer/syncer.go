// Package syncer reconciles a named playlist with the user's current
// top-tracks snapshot.
package syncer

import (
	"context"

	"go.uber.org/zap"

	"github.com/solenne/spotify-top-sync/internal/spotify"
)

// API is the part of the Spotify client the synchronizer depends on.
// *spotify.Client satisfies it; tests substitute a fake.
type API interface {
	UserID(ctx context.Context) (string, error)
	TopTracks(ctx context.Context) ([]string, error)
	Playlists(ctx context.Context, userID string) ([]spotify.Playlist, error)
	CreatePlaylist(ctx context.Context, userID, name string) (string, error)
	ReplaceTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// Result describes a completed synchronization run.
type Result struct {
	PlaylistID string
	Created    bool
	TrackCount int
}

// Service runs playlist synchronizations. It holds no per-run state.
type Service struct {
	logger *zap.Logger
}

// New creates a synchronizer.
func New(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Sync reconciles the playlist with the given name against the user's top
// tracks: resolve the user, fetch the snapshot, find or create the playlist,
// overwrite its contents. Steps run strictly in order and the first failure
// aborts the run, so a playlist created in the fourth step is left behind if
// the final write fails. Requires an unexpired access token behind api; no
// refresh happens here.
func (s *Service) Sync(ctx context.Context, api API, name string) (*Result, error) {
	userID, err := api.UserID(ctx)
	if err != nil {
		return nil, err
	}

	tracks, err := api.TopTracks(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := api.Playlists(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &Result{TrackCount: len(tracks)}
	result.PlaylistID = findPlaylist(playlists, name)
	if result.PlaylistID == "" {
		id, err := api.CreatePlaylist(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		result.PlaylistID = id
		result.Created = true
		s.logger.Info("created playlist",
			zap.String("name", name),
			zap.String("playlist_id", id))
	}

	if err := api.ReplaceTracks(ctx, result.PlaylistID, tracks); err != nil {
		return nil, err
	}

	s.logger.Info("playlist synchronized",
		zap.String("playlist_id", result.PlaylistID),
		zap.Bool("created", result.Created),
		zap.Int("tracks", result.TrackCount))
	return result, nil
}

// findPlaylist returns the ID of the first playlist whose name matches
// exactly (case-sensitive), or "" when none does. With duplicate names the
// collection order decides.
func findPlaylist(playlists []spotify.Playlist, name string) string {
	for _, p := range playlists {
		if p.Name == name {
			return p.ID
		}
	}
	return ""
}
