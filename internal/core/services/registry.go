// Package services wires the recommendation strategies together: the model
// registry drives the strategy lifecycle and the credential gate fronts every
// catalog session.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

// ModelFactory builds a fresh, single-use model instance. The registry calls
// it once per generation request so concurrent requests never share a live
// instance.
type ModelFactory func() ports.RecommenderModel

// Registry holds the named recommendation models and runs the full lifecycle
// for one generation request: Initialize, Generate, Finalize. Finalize is
// guaranteed to run exactly once per request on every exit path.
type Registry struct {
	log *zap.Logger

	mu          sync.RWMutex
	order       []string
	factories   map[string]ModelFactory
	descriptors map[string]domain.ModelDescriptor
}

// NewRegistry constructs an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:         log,
		factories:   make(map[string]ModelFactory),
		descriptors: make(map[string]domain.ModelDescriptor),
	}
}

// Register adds a model under its descriptor name, overwriting any previous
// registration of the same name. Listing order is first-registration order.
func (r *Registry) Register(factory ModelFactory) {
	desc := factory().Descriptor()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[desc.Name]; !exists {
		r.order = append(r.order, desc.Name)
	}
	r.factories[desc.Name] = factory
	r.descriptors[desc.Name] = desc
	r.log.Info("model registered",
		zap.String("model", desc.Name),
		zap.String("version", desc.Version))
}

// List returns all registered descriptors in registration order.
func (r *Registry) List() []domain.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ModelDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.descriptors[name])
	}
	return out
}

// Lookup returns the descriptor registered under name, or ErrModelNotFound.
func (r *Registry) Lookup(name string) (domain.ModelDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descriptors[name]
	if !ok {
		return domain.ModelDescriptor{}, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	return desc, nil
}

func (r *Registry) factory(name string) (ModelFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", name, domain.ErrModelNotFound)
	}
	return factory, nil
}

// GeneratePlaylist resolves the model named by cfg.Model and drives one full
// lifecycle sequentially: Initialize, Generate, Finalize. The pipeline holds
// no internal concurrency and performs no retries; cancellation surfaces from
// the strategy's outbound calls and Finalize still runs before returning.
func (r *Registry) GeneratePlaylist(ctx context.Context, prompt string, cfg domain.GenerationConfig, gctx *domain.GenerationContext, cred *domain.Credential) (domain.GenerationResult, error) {
	if err := cfg.Validate(); err != nil {
		return domain.GenerationResult{}, err
	}

	factory, err := r.factory(cfg.Model)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	model := factory()

	log := r.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("model", cfg.Model))
	log.Info("generating playlist", zap.String("prompt", prompt))

	defer func() {
		if ferr := model.Finalize(); ferr != nil {
			log.Warn("model finalize failed", zap.Error(ferr))
		}
	}()

	if err := model.Initialize(ctx, cred); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("initialize model: %w", err)
	}

	result, err := model.Generate(ctx, prompt, cfg, gctx)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate playlist: %w", err)
	}

	log.Info("playlist generated",
		zap.String("playlist_id", result.Context.ExternalPlaylistID),
		zap.Int("num_songs", result.Config.NumSongs))
	return result, nil
}
