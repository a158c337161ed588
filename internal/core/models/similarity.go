package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

const (
	// maxSeedGenres caps the inferred seed list at what the catalog's
	// recommendation query accepts.
	maxSeedGenres = 5

	// DefaultGapThreshold is the cohesion cutoff: a score drop between two
	// consecutive ranked genres larger than this truncates the seed list.
	// Tunable; the value is inherited, not derived.
	DefaultGapThreshold = 2.0

	// DefaultSearchLimit is how many public playlists feature inference
	// samples for one prompt.
	DefaultSearchLimit = 20

	// playlistTrackLimit caps the tracks read from one sampled playlist.
	playlistTrackLimit = 100
)

// SimilarityOptions tunes the similarity-based model. Zero values fall back
// to the defaults above.
type SimilarityOptions struct {
	SearchLimit  int
	GapThreshold float64
	AppName      string
}

// SimilarityModel infers seed genres by text similarity against the genre
// vocabulary and feature targets by averaging audio features of public
// playlists matching the prompt.
type SimilarityModel struct {
	desc    domain.ModelDescriptor
	session catalogSession
	scorer  ports.GenreScorer
	log     *zap.Logger

	searchLimit  int
	gapThreshold float64
	appName      string
	now          func() time.Time
}

var _ ports.RecommenderModel = (*SimilarityModel)(nil)

// NewSimilarityModel constructs a single-use similarity-based model.
func NewSimilarityModel(desc domain.ModelDescriptor, gate ports.SessionGate, scorer ports.GenreScorer, opts SimilarityOptions, log *zap.Logger) *SimilarityModel {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.GapThreshold <= 0 {
		opts.GapThreshold = DefaultGapThreshold
	}
	if opts.AppName == "" {
		opts.AppName = "Moodika"
	}
	return &SimilarityModel{
		desc:         desc,
		session:      catalogSession{gate: gate},
		scorer:       scorer,
		log:          log,
		searchLimit:  opts.SearchLimit,
		gapThreshold: opts.GapThreshold,
		appName:      opts.AppName,
		now:          time.Now,
	}
}

func (m *SimilarityModel) Descriptor() domain.ModelDescriptor { return m.desc }

func (m *SimilarityModel) Initialize(ctx context.Context, cred *domain.Credential) error {
	if err := m.session.open(ctx, cred); err != nil {
		return fmt.Errorf("%s: %w", m.desc.Name, err)
	}
	m.log.Info("model initialized", zap.String("model", m.desc.Name))
	return nil
}

func (m *SimilarityModel) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig, gctx *domain.GenerationContext) (domain.GenerationResult, error) {
	if err := m.session.state.beginGenerate(); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%s: %w", m.desc.Name, err)
	}

	genres := cfg.Genres
	if !cfg.GenerateGenres {
		genres = m.inferGenres(prompt)
		cfg.Genres = genres
	}
	m.log.Info("seed genres selected", zap.Strings("genres", genres))

	targets, err := m.inferFeatures(ctx, prompt, cfg.Popularity)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%s: %w", m.desc.Name, err)
	}

	playlistID, err := curate(ctx, m.session.catalog, m.log, prompt, m.appName, targets, genres, cfg.NumSongs)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%s: %w", m.desc.Name, err)
	}

	gctx.ExternalPlaylistID = playlistID
	gctx.CreatedAt = m.now()
	return domain.GenerationResult{Prompt: prompt, Config: cfg, Context: *gctx}, nil
}

func (m *SimilarityModel) Finalize() error {
	m.session.close()
	return nil
}

type scoredGenre struct {
	name  string
	score float64
}

// inferGenres scores the whole vocabulary against the prompt, keeps the five
// best matches, and truncates them to the leading cohesive cluster.
func (m *SimilarityModel) inferGenres(prompt string) []string {
	ranked := make([]scoredGenre, 0, len(domain.Genres))
	for _, genre := range domain.Genres {
		ranked = append(ranked, scoredGenre{name: genre, score: m.scorer.Score(prompt, genre)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > maxSeedGenres {
		ranked = ranked[:maxSeedGenres]
	}
	ranked = truncateAtGap(ranked, m.gapThreshold)

	genres := make([]string, len(ranked))
	for i, sg := range ranked {
		genres[i] = sg.name
	}
	return genres
}

// truncateAtGap cuts a descending-ranked list immediately after entry i when
// the score drop to entry i+1 exceeds gap. This keeps only the top cluster of
// clearly-superior genres and discards a weakly-matching tail.
func truncateAtGap(ranked []scoredGenre, gap float64) []scoredGenre {
	for i := 0; i+1 < len(ranked); i++ {
		if ranked[i].score-ranked[i+1].score > gap {
			return ranked[:i+1]
		}
	}
	return ranked
}

// inferFeatures samples public playlists matching the prompt and aggregates
// their audio features as the mean of per-playlist means, so every playlist
// weighs the same regardless of its track count.
func (m *SimilarityModel) inferFeatures(ctx context.Context, prompt string, popularity int) (domain.AudioFeatureVector, error) {
	playlists, err := m.session.catalog.SearchPlaylists(ctx, prompt, m.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search playlists: %w", err)
	}
	if len(playlists) == 0 {
		return nil, fmt.Errorf("no playlists match %q: %w", prompt, domain.ErrEmptyResult)
	}

	playlistMeans := make([]domain.AudioFeatureVector, 0, len(playlists))
	for _, pl := range playlists {
		trackIDs, err := m.session.catalog.PlaylistTrackIDs(ctx, pl.ID, playlistTrackLimit)
		if err != nil {
			return nil, fmt.Errorf("tracks of playlist %s: %w", pl.ID, err)
		}
		if len(trackIDs) == 0 {
			continue
		}

		features, err := m.session.catalog.TrackFeatures(ctx, trackIDs)
		if err != nil {
			return nil, fmt.Errorf("features of playlist %s tracks: %w", pl.ID, err)
		}

		mean := domain.MeanFeatureVector(features)
		if mean == nil {
			continue
		}
		playlistMeans = append(playlistMeans, mean)
	}
	if len(playlistMeans) == 0 {
		return nil, fmt.Errorf("no usable tracks in %d playlists for %q: %w", len(playlists), prompt, domain.ErrEmptyResult)
	}

	targets := domain.MeanFeatureVector(playlistMeans)
	targets[domain.FeaturePopularity] = float64(popularity)

	m.log.Debug("feature targets aggregated",
		zap.Int("playlists_sampled", len(playlistMeans)),
		zap.Int("features", len(targets)))
	return targets, nil
}
