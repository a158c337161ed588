// Package spotify implements the catalog ports on the Spotify Web API. A
// Provider opens one authenticated session per request credential; the
// resulting Client performs search, feature lookup, recommendation, and
// playlist mutation. Calls are rate limited but never retried here: retry
// policy belongs to the caller, and playlist mutation must not be replayed
// blindly.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 10

	// The audio-features endpoint accepts at most 100 ids per call.
	featureChunkSize = 100
)

// ProviderOptions tunes the adapter. Zero values fall back to defaults;
// BaseURL is only overridden in tests.
type ProviderOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Provider opens catalog sessions bound to an access token. The outbound rate
// limiter is shared across all sessions it opens.
type Provider struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	log     *zap.Logger
}

var _ ports.CatalogProvider = (*Provider)(nil)

// NewProvider constructs a session provider.
func NewProvider(opts ProviderOptions, log *zap.Logger) *Provider {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	return &Provider{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		log:     log,
	}
}

// Open returns a catalog session authenticated as the token's principal.
func (p *Provider) Open(ctx context.Context, accessToken string) (ports.CatalogClient, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("spotify: empty access token: %w", domain.ErrUnauthorized)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = p.timeout

	var clientOpts []spotifyapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, spotifyapi.WithBaseURL(p.baseURL))
	}

	return &Client{
		sp:      spotifyapi.New(httpClient, clientOpts...),
		limiter: p.limiter,
		log:     p.log,
	}, nil
}

// Client is one authenticated catalog session.
type Client struct {
	sp      *spotifyapi.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

var _ ports.CatalogClient = (*Client)(nil)

func (c *Client) SearchPlaylists(ctx context.Context, text string, limit int) ([]ports.PlaylistRef, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spotify: search playlists: %w", err)
	}

	result, err := c.sp.Search(ctx, text, spotifyapi.SearchTypePlaylist, spotifyapi.Limit(limit))
	if err != nil {
		return nil, classify("search playlists", err)
	}
	if result.Playlists == nil {
		return nil, nil
	}

	refs := make([]ports.PlaylistRef, 0, len(result.Playlists.Playlists))
	for _, pl := range result.Playlists.Playlists {
		if pl.ID == "" {
			continue
		}
		refs = append(refs, ports.PlaylistRef{ID: string(pl.ID), Name: pl.Name})
	}
	return refs, nil
}

func (c *Client) PlaylistTrackIDs(ctx context.Context, playlistID string, limit int) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spotify: playlist tracks: %w", err)
	}

	page, err := c.sp.GetPlaylistItems(ctx, spotifyapi.ID(playlistID), spotifyapi.Limit(limit))
	if err != nil {
		return nil, classify("playlist tracks", err)
	}

	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		// Episodes and removed tracks come back without a track reference.
		if item.Track.Track == nil || item.Track.Track.ID == "" {
			continue
		}
		ids = append(ids, string(item.Track.Track.ID))
	}
	return ids, nil
}

func (c *Client) TrackFeatures(ctx context.Context, trackIDs []string) ([]domain.AudioFeatureVector, error) {
	vectors := make([]domain.AudioFeatureVector, 0, len(trackIDs))
	for start := 0; start < len(trackIDs); start += featureChunkSize {
		end := start + featureChunkSize
		if end > len(trackIDs) {
			end = len(trackIDs)
		}

		ids := make([]spotifyapi.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			ids = append(ids, spotifyapi.ID(id))
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("spotify: track features: %w", err)
		}
		features, err := c.sp.GetAudioFeatures(ctx, ids...)
		if err != nil {
			return nil, classify("track features", err)
		}

		for _, f := range features {
			if f == nil {
				continue
			}
			vectors = append(vectors, featureVector(f))
		}
	}
	return vectors, nil
}

func (c *Client) Recommend(ctx context.Context, targets domain.AudioFeatureVector, genres []string, count int) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spotify: recommend: %w", err)
	}

	seeds := spotifyapi.Seeds{Genres: genres}
	recs, err := c.sp.GetRecommendations(ctx, seeds, trackAttributes(targets), spotifyapi.Limit(count))
	if err != nil {
		return nil, classify("recommend", err)
	}

	ids := make([]string, 0, len(recs.Tracks))
	for _, track := range recs.Tracks {
		ids = append(ids, string(track.ID))
	}
	return ids, nil
}

func (c *Client) CurrentPrincipal(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("spotify: current principal: %w", err)
	}

	user, err := c.sp.CurrentUser(ctx)
	if err != nil {
		return "", classify("current principal", err)
	}
	return user.ID, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, owner, name string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("spotify: create playlist: %w", err)
	}

	playlist, err := c.sp.CreatePlaylistForUser(ctx, owner, name, "", false, false)
	if err != nil {
		return "", classify("create playlist", err)
	}
	return string(playlist.ID), nil
}

func (c *Client) AppendTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("spotify: append tracks: %w", err)
	}

	ids := make([]spotifyapi.ID, 0, len(trackIDs))
	for _, id := range trackIDs {
		ids = append(ids, spotifyapi.ID(id))
	}

	if _, err := c.sp.AddTracksToPlaylist(ctx, spotifyapi.ID(playlistID), ids...); err != nil {
		return classify("append tracks", err)
	}
	return nil
}

// classify maps a Spotify API failure onto the domain error taxonomy.
func classify(op string, err error) error {
	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			return fmt.Errorf("spotify: %s: %s: %w", op, apiErr.Message, domain.ErrUnauthorized)
		case apiErr.Status >= http.StatusInternalServerError || apiErr.Status == http.StatusTooManyRequests:
			return fmt.Errorf("spotify: %s: %s: %w", op, apiErr.Message, domain.ErrExternalService)
		}
		return fmt.Errorf("spotify: %s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("spotify: %s: %w", op, err)
	}
	return fmt.Errorf("spotify: %s: %s: %w", op, err, domain.ErrExternalService)
}

func featureVector(f *spotifyapi.AudioFeatures) domain.AudioFeatureVector {
	return domain.AudioFeatureVector{
		domain.FeatureAcousticness:     float64(f.Acousticness),
		domain.FeatureDanceability:     float64(f.Danceability),
		domain.FeatureEnergy:           float64(f.Energy),
		domain.FeatureInstrumentalness: float64(f.Instrumentalness),
		domain.FeatureKey:              float64(f.Key),
		domain.FeatureLiveness:         float64(f.Liveness),
		domain.FeatureLoudness:         float64(f.Loudness),
		domain.FeatureMode:             float64(f.Mode),
		domain.FeatureSpeechiness:      float64(f.Speechiness),
		domain.FeatureTempo:            float64(f.Tempo),
		domain.FeatureTimeSignature:    float64(f.TimeSignature),
		domain.FeatureValence:          float64(f.Valence),
	}
}

// trackAttributes serializes a feature vector as target_* recommendation
// attributes. Integer-valued attributes are rounded.
func trackAttributes(targets domain.AudioFeatureVector) *spotifyapi.TrackAttributes {
	attrs := spotifyapi.NewTrackAttributes()
	for name, value := range targets {
		switch name {
		case domain.FeatureAcousticness:
			attrs = attrs.TargetAcousticness(value)
		case domain.FeatureDanceability:
			attrs = attrs.TargetDanceability(value)
		case domain.FeatureEnergy:
			attrs = attrs.TargetEnergy(value)
		case domain.FeatureInstrumentalness:
			attrs = attrs.TargetInstrumentalness(value)
		case domain.FeatureKey:
			attrs = attrs.TargetKey(int(math.Round(value)))
		case domain.FeatureLiveness:
			attrs = attrs.TargetLiveness(value)
		case domain.FeatureLoudness:
			attrs = attrs.TargetLoudness(value)
		case domain.FeatureMode:
			attrs = attrs.TargetMode(int(math.Round(value)))
		case domain.FeatureSpeechiness:
			attrs = attrs.TargetSpeechiness(value)
		case domain.FeatureTempo:
			attrs = attrs.TargetTempo(value)
		case domain.FeatureTimeSignature:
			attrs = attrs.TargetTimeSignature(int(math.Round(value)))
		case domain.FeatureValence:
			attrs = attrs.TargetValence(value)
		case domain.FeaturePopularity:
			attrs = attrs.TargetPopularity(int(math.Round(value)))
		}
	}
	return attrs
}
