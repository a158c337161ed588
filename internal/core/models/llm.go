package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

const featureSystemPrompt = `You are a music expert. I will give you a text. You will extract song audio parameters from it and reply with strictly a JSON object like this example: {"acousticness": 0.00242, "danceability": 0.585, "energy": 0.842, "instrumentalness": 0.00686, "key": 9, "liveness": 0.0866, "loudness": -5.883, "mode": 0, "speechiness": 0.0556, "tempo": 118.211, "time_signature": 4, "valence": 0.428}. Give a value for every parameter, scaled to its natural range, and make the values really fit the mood and emotion of the text. If the text does not make sense, still give parameters. Reply with the JSON object only, no other text.`

// genreSystemPrompt constrains the completion to a JSON array of 3-5 genres
// drawn from the fixed vocabulary.
func genreSystemPrompt() string {
	quoted := make([]string, len(domain.Genres))
	for i, g := range domain.Genres {
		quoted[i] = strconv.Quote(g)
	}
	return fmt.Sprintf(`You are a music genre selector critic. I will give you a text. You will extract matching music genres from it and reply with strictly a JSON array of genre strings, like this example: ["rock", "pop", "rap"]. Add at least 3 and at most 5 genres. Be selective and only add genres that really fit the mood of the text. These are the available genres: [%s]. Reply with the JSON array only, no other text.`,
		strings.Join(quoted, ", "))
}

// LLMOptions tunes the LLM-based model. Zero values fall back to defaults.
type LLMOptions struct {
	AppName string
}

// LLMModel delegates genre and feature inference to a language model through
// two schema-constrained completion requests.
type LLMModel struct {
	desc      domain.ModelDescriptor
	session   catalogSession
	completer ports.Completer
	log       *zap.Logger

	appName string
	now     func() time.Time
}

var _ ports.RecommenderModel = (*LLMModel)(nil)

// NewLLMModel constructs a single-use LLM-based model.
func NewLLMModel(desc domain.ModelDescriptor, gate ports.SessionGate, completer ports.Completer, opts LLMOptions, log *zap.Logger) *LLMModel {
	if opts.AppName == "" {
		opts.AppName = "Moodika"
	}
	return &LLMModel{
		desc:      desc,
		session:   catalogSession{gate: gate},
		completer: completer,
		log:       log,
		appName:   opts.AppName,
		now:       time.Now,
	}
}

func (m *LLMModel) Descriptor() domain.ModelDescriptor { return m.desc }

func (m *LLMModel) Initialize(ctx context.Context, cred *domain.Credential) error {
	if err := m.session.open(ctx, cred); err != nil {
		return fmt.Errorf("%s: %w", m.desc.Name, err)
	}
	m.log.Info("model initialized", zap.String("model", m.desc.Name))
	return nil
}

func (m *LLMModel) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig, gctx *domain.GenerationContext) (domain.GenerationResult, error) {
	if err := m.session.state.beginGenerate(); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%s: %w", m.desc.Name, err)
	}

	genres := cfg.Genres
	if !cfg.GenerateGenres {
		inferred, err := m.inferGenres(ctx, prompt)
		if err != nil {
			return domain.GenerationResult{}, fmt.Errorf("%s: %w", m.desc.Name, err)
		}
		genres = inferred
		cfg.Genres = inferred
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

func (m *LLMModel) Finalize() error {
	m.session.close()
	return nil
}

// inferGenres asks the language model for a strict JSON array of seed genres.
// Anything that does not parse as a non-empty string array is a ParseError,
// never a silent fallback.
func (m *LLMModel) inferGenres(ctx context.Context, prompt string) ([]string, error) {
	raw, err := m.completer.Complete(ctx, genreSystemPrompt(), prompt)
	if err != nil {
		return nil, fmt.Errorf("genre completion: %w", err)
	}

	var genres []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &genres); err != nil {
		return nil, &domain.ParseError{Stage: "genres", Raw: raw, Err: err}
	}
	if len(genres) == 0 {
		return nil, &domain.ParseError{Stage: "genres", Raw: raw, Err: errors.New("empty genre array")}
	}
	return genres, nil
}

// inferFeatures asks the language model for a strict JSON object of audio
// feature values. Keys outside the feature vocabulary are dropped; the
// popularity target from the config is merged in. The catalog adapter
// serializes every entry as a target_* recommendation attribute.
func (m *LLMModel) inferFeatures(ctx context.Context, prompt string, popularity int) (domain.AudioFeatureVector, error) {
	raw, err := m.completer.Complete(ctx, featureSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("feature completion: %w", err)
	}

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, &domain.ParseError{Stage: "features", Raw: raw, Err: err}
	}

	targets := make(domain.AudioFeatureVector, len(parsed)+1)
	for name, value := range parsed {
		if !domain.IsFeatureName(name) {
			m.log.Warn("dropping unknown audio feature", zap.String("feature", name))
			continue
		}
		targets[name] = value
	}
	if len(targets) == 0 {
		return nil, &domain.ParseError{Stage: "features", Raw: raw, Err: errors.New("no known audio features in response")}
	}
	targets[domain.FeaturePopularity] = float64(popularity)
	return targets, nil
}
