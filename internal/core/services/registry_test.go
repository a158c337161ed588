package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

// mockModel is a lightweight strategy that records lifecycle calls.
type mockModel struct {
	desc domain.ModelDescriptor

	initErr error
	genErr  error

	initCalls     int
	generateCalls int
	finalizeCalls int
}

func (m *mockModel) Descriptor() domain.ModelDescriptor { return m.desc }

func (m *mockModel) Initialize(ctx context.Context, cred *domain.Credential) error {
	m.initCalls++
	return m.initErr
}

func (m *mockModel) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig, gctx *domain.GenerationContext) (domain.GenerationResult, error) {
	m.generateCalls++
	if m.genErr != nil {
		return domain.GenerationResult{}, m.genErr
	}
	gctx.ExternalPlaylistID = "pl-generated"
	return domain.GenerationResult{Prompt: prompt, Config: cfg, Context: *gctx}, nil
}

func (m *mockModel) Finalize() error {
	m.finalizeCalls++
	return nil
}

func newTestRegistry(t *testing.T, m *mockModel) *Registry {
	t.Helper()
	r := NewRegistry(zap.NewNop())
	r.Register(func() ports.RecommenderModel { return m })
	return r
}

func TestRegistry_ListAndLookup(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	descs := []domain.ModelDescriptor{
		{Name: "alpha", Description: "first", Version: "1.0"},
		{Name: "beta", Description: "second", Version: "2.0"},
		{Name: "gamma", Description: "third", Version: "0.1"},
	}
	for _, d := range descs {
		d := d
		r.Register(func() ports.RecommenderModel { return &mockModel{desc: d} })
	}

	got := r.List()
	if len(got) != len(descs) {
		t.Fatalf("expected %d descriptors, got %d", len(descs), len(got))
	}
	for i, d := range descs {
		if got[i] != d {
			t.Fatalf("descriptor %d: expected %+v, got %+v", i, d, got[i])
		}
	}

	for _, d := range descs {
		found, err := r.Lookup(d.Name)
		if err != nil {
			t.Fatalf("lookup %s: %v", d.Name, err)
		}
		if found != d {
			t.Fatalf("lookup %s: expected %+v, got %+v", d.Name, d, found)
		}
	}
}

func TestRegistry_Register_OverwriteKeepsOrder(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Register(func() ports.RecommenderModel {
		return &mockModel{desc: domain.ModelDescriptor{Name: "alpha", Version: "1.0"}}
	})
	r.Register(func() ports.RecommenderModel {
		return &mockModel{desc: domain.ModelDescriptor{Name: "beta", Version: "1.0"}}
	})
	r.Register(func() ports.RecommenderModel {
		return &mockModel{desc: domain.ModelDescriptor{Name: "alpha", Version: "2.0"}}
	})

	got := r.List()
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptors after overwrite, got %d", len(got))
	}
	if got[0].Name != "alpha" || got[0].Version != "2.0" {
		t.Fatalf("expected overwritten alpha v2.0 first, got %+v", got[0])
	}
	if got[1].Name != "beta" {
		t.Fatalf("expected beta second, got %+v", got[1])
	}
}

func TestRegistry_Lookup_NotFound(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	_, err := r.Lookup("nonexistent")
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestRegistry_GeneratePlaylist(t *testing.T) {
	tests := []struct {
		name         string
		model        *mockModel
		cfgModel     string
		wantErr      error
		wantGenerate int
		wantFinalize int
	}{
		{
			name:         "happy path finalizes once",
			model:        &mockModel{desc: domain.ModelDescriptor{Name: "m"}},
			cfgModel:     "m",
			wantGenerate: 1,
			wantFinalize: 1,
		},
		{
			name:         "generate failure still finalizes once",
			model:        &mockModel{desc: domain.ModelDescriptor{Name: "m"}, genErr: domain.ErrEmptyResult},
			cfgModel:     "m",
			wantErr:      domain.ErrEmptyResult,
			wantGenerate: 1,
			wantFinalize: 1,
		},
		{
			name:         "initialize failure finalizes once and skips generate",
			model:        &mockModel{desc: domain.ModelDescriptor{Name: "m"}, initErr: domain.ErrUnauthorized},
			cfgModel:     "m",
			wantErr:      domain.ErrUnauthorized,
			wantGenerate: 0,
			wantFinalize: 1,
		},
		{
			name:         "unknown model",
			model:        &mockModel{desc: domain.ModelDescriptor{Name: "m"}},
			cfgModel:     "other",
			wantErr:      domain.ErrModelNotFound,
			wantGenerate: 0,
			wantFinalize: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, tt.model)

			cfg := domain.NewGenerationConfig(tt.cfgModel)
			cred := domain.Credential{AccessToken: "tok", RefreshToken: "ref"}
			var gctx domain.GenerationContext

			result, err := r.GeneratePlaylist(context.Background(), "rainy sunday", cfg, &gctx, &cred)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.Context.ExternalPlaylistID != "pl-generated" {
					t.Fatalf("expected populated playlist id, got %q", result.Context.ExternalPlaylistID)
				}
				if result.Prompt != "rainy sunday" {
					t.Fatalf("expected prompt echoed, got %q", result.Prompt)
				}
			}

			if tt.model.generateCalls != tt.wantGenerate {
				t.Fatalf("expected %d generate calls, got %d", tt.wantGenerate, tt.model.generateCalls)
			}
			if tt.model.finalizeCalls != tt.wantFinalize {
				t.Fatalf("expected %d finalize calls, got %d", tt.wantFinalize, tt.model.finalizeCalls)
			}
		})
	}
}

func TestRegistry_GeneratePlaylist_InvalidConfig(t *testing.T) {
	m := &mockModel{desc: domain.ModelDescriptor{Name: "m"}}
	r := newTestRegistry(t, m)

	cfg := domain.GenerationConfig{Model: "m", NumSongs: 0, Popularity: 50}
	cred := domain.Credential{AccessToken: "tok"}
	var gctx domain.GenerationContext

	if _, err := r.GeneratePlaylist(context.Background(), "p", cfg, &gctx, &cred); err == nil {
		t.Fatal("expected validation error for zero num songs")
	}
	if m.initCalls != 0 || m.finalizeCalls != 0 {
		t.Fatalf("expected no lifecycle calls on invalid config, got init=%d finalize=%d", m.initCalls, m.finalizeCalls)
	}
}
