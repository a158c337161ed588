package models

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

// curate is the tail shared by every strategy: submit the inferred targets and
// seed genres to the catalog's recommendation query, then create and populate
// a playlist for the authenticated principal. The returned track order is the
// catalog's order; no re-ranking happens here. Playlist creation is
// side-effecting and non-idempotent, so the empty-result check runs before any
// mutation and nothing here retries.
func curate(ctx context.Context, catalog ports.CatalogClient, log *zap.Logger, prompt, appName string, targets domain.AudioFeatureVector, genres []string, count int) (string, error) {
	trackIDs, err := catalog.Recommend(ctx, targets, genres, count)
	if err != nil {
		return "", fmt.Errorf("recommend tracks: %w", err)
	}
	if len(trackIDs) == 0 {
		return "", fmt.Errorf("recommendation for %q returned no tracks: %w", prompt, domain.ErrEmptyResult)
	}

	principal, err := catalog.CurrentPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve principal: %w", err)
	}

	name := fmt.Sprintf("%s - %s generated", prompt, appName)
	playlistID, err := catalog.CreatePlaylist(ctx, principal, name)
	if err != nil {
		return "", fmt.Errorf("create playlist: %w", err)
	}

	if err := catalog.AppendTracks(ctx, playlistID, trackIDs); err != nil {
		return "", fmt.Errorf("append tracks to playlist %s: %w", playlistID, err)
	}

	log.Info("playlist created",
		zap.String("playlist_id", playlistID),
		zap.String("principal", principal),
		zap.Int("tracks", len(trackIDs)))

	return playlistID, nil
}
