package models

import (
	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
	"github.com/moodika/moodika/internal/core/services"
)

// Production model descriptors. Immutable; the registry keys on Name.
var (
	SimilarityDescriptor = domain.ModelDescriptor{
		Name:        "Moodika-Model-A",
		Description: "A playlist-based model that averages results from user-created playlists to provide recommendations. It leverages the collective input from existing playlists to generate a song profile.",
		Version:     "1.0",
	}

	LLMDescriptor = domain.ModelDescriptor{
		Name:        "ChatGPT",
		Description: "Utilizes a language model to derive catalog parameters for generating recommendations, offering a conversational interface for personalized music suggestions.",
		Version:     "3.0",
	}
)

// RegisterBuiltins registers the two production strategies.
func RegisterBuiltins(reg *services.Registry, gate ports.SessionGate, scorer ports.GenreScorer, completer ports.Completer, simOpts SimilarityOptions, llmOpts LLMOptions, log *zap.Logger) {
	reg.Register(func() ports.RecommenderModel {
		return NewSimilarityModel(SimilarityDescriptor, gate, scorer, simOpts, log)
	})
	reg.Register(func() ports.RecommenderModel {
		return NewLLMModel(LLMDescriptor, gate, completer, llmOpts, log)
	})
}
