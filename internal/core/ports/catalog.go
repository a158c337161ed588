package ports

import (
	"context"

	"github.com/moodika/moodika/internal/core/domain"
)

// PlaylistRef identifies a public catalog playlist returned by a search.
type PlaylistRef struct {
	ID   string
	Name string
}

// CatalogClient is one authenticated catalog session, bound to a principal's
// access token. All calls are blocking network operations; cancellation and
// timeouts come from the caller's context and the adapter's HTTP client.
type CatalogClient interface {
	// SearchPlaylists returns up to limit public playlists matching the text.
	SearchPlaylists(ctx context.Context, text string, limit int) ([]PlaylistRef, error)

	// PlaylistTrackIDs returns up to limit track ids of the playlist, in
	// playlist order. Entries whose track reference is absent are skipped.
	PlaylistTrackIDs(ctx context.Context, playlistID string, limit int) ([]string, error)

	// TrackFeatures returns the audio feature vectors for the given tracks.
	// Tracks with no feature vector are skipped, so the result may be shorter
	// than the input.
	TrackFeatures(ctx context.Context, trackIDs []string) ([]domain.AudioFeatureVector, error)

	// Recommend submits feature targets, seed genres, and a desired count to
	// the catalog's recommendation query and returns track ids in the
	// catalog's order.
	Recommend(ctx context.Context, targets domain.AudioFeatureVector, genres []string, count int) ([]string, error)

	// CurrentPrincipal returns the id of the authenticated user.
	CurrentPrincipal(ctx context.Context) (string, error)

	// CreatePlaylist creates an empty playlist owned by the given user and
	// returns its id.
	CreatePlaylist(ctx context.Context, owner, name string) (string, error)

	// AppendTracks appends the tracks to the playlist in the given order.
	AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// CatalogProvider opens catalog sessions bound to an access token.
type CatalogProvider interface {
	Open(ctx context.Context, accessToken string) (CatalogClient, error)
}
