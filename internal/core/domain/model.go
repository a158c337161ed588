package domain

import (
	"errors"
	"time"
)

// ModelDescriptor identifies a registered recommendation model. Descriptors are
// immutable once registered; Name is the registry key.
type ModelDescriptor struct {
	Name        string
	Description string
	Version     string
}

// Defaults applied by NewGenerationConfig.
const (
	DefaultNumSongs   = 10
	DefaultPopularity = 50
)

// GenerationConfig carries the caller's tuning for one generation request.
//
// GenerateGenres selects the genre source: when false the strategy infers the
// seed genres from the prompt, when true Genres is taken as given and must be
// non-empty.
type GenerationConfig struct {
	Model          string
	NumSongs       int
	Genres         []string
	Popularity     int
	GenerateGenres bool
}

// NewGenerationConfig returns a config for the named model with the default
// song count and popularity target.
func NewGenerationConfig(model string) GenerationConfig {
	return GenerationConfig{
		Model:      model,
		NumSongs:   DefaultNumSongs,
		Popularity: DefaultPopularity,
	}
}

// Validate checks the invariants the strategies assume.
func (c GenerationConfig) Validate() error {
	if c.Model == "" {
		return errors.New("domain: config model name is required")
	}
	if c.NumSongs <= 0 {
		return errors.New("domain: config num songs must be positive")
	}
	if c.Popularity < 0 || c.Popularity > 100 {
		return errors.New("domain: config popularity must be in [0,100]")
	}
	if c.GenerateGenres && len(c.Genres) == 0 {
		return errors.New("domain: config genres must be non-empty when taken as given")
	}
	return nil
}

// GenerationContext is populated by the strategy on success.
type GenerationContext struct {
	ExternalPlaylistID string
	CreatedAt          time.Time
}

// GenerationResult is the full outcome of one generation request. The core
// never returns a half-populated result: either Context carries a real
// playlist id or the call returned an error.
type GenerationResult struct {
	Prompt  string
	Config  GenerationConfig
	Context GenerationContext
}
