package domain

import "testing"

func TestNewGenerationConfig_Defaults(t *testing.T) {
	cfg := NewGenerationConfig("some-model")

	if cfg.Model != "some-model" {
		t.Fatalf("expected model name carried, got %q", cfg.Model)
	}
	if cfg.NumSongs != DefaultNumSongs {
		t.Fatalf("expected default num songs %d, got %d", DefaultNumSongs, cfg.NumSongs)
	}
	if cfg.Popularity != DefaultPopularity {
		t.Fatalf("expected default popularity %d, got %d", DefaultPopularity, cfg.Popularity)
	}
	if cfg.GenerateGenres {
		t.Fatal("expected genre inference by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestGenerationConfig_Validate(t *testing.T) {
	valid := GenerationConfig{Model: "m", NumSongs: 10, Popularity: 50}

	tests := []struct {
		name    string
		mutate  func(*GenerationConfig)
		wantErr bool
	}{
		{"valid", func(c *GenerationConfig) {}, false},
		{"missing model", func(c *GenerationConfig) { c.Model = "" }, true},
		{"zero songs", func(c *GenerationConfig) { c.NumSongs = 0 }, true},
		{"negative songs", func(c *GenerationConfig) { c.NumSongs = -1 }, true},
		{"popularity below range", func(c *GenerationConfig) { c.Popularity = -1 }, true},
		{"popularity above range", func(c *GenerationConfig) { c.Popularity = 101 }, true},
		{"popularity at bounds", func(c *GenerationConfig) { c.Popularity = 100 }, false},
		{"given genres empty", func(c *GenerationConfig) { c.GenerateGenres = true }, true},
		{"given genres present", func(c *GenerationConfig) {
			c.GenerateGenres = true
			c.Genres = []string{"rock"}
		}, false},
		{"inferred genres may be empty", func(c *GenerationConfig) { c.Genres = nil }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
