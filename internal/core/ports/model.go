package ports

import (
	"context"

	"github.com/moodika/moodika/internal/core/domain"
)

// RecommenderModel is the lifecycle contract every recommendation strategy
// implements. The state machine is Uninitialized -> Initialized -> Finalized:
// Initialize establishes a catalog session for the credential and must precede
// Generate; Generate may run at most once per Initialize and is not safe for
// concurrent use on one instance; Finalize releases the session and is
// idempotent. Violations surface as domain.ErrLifecycle.
type RecommenderModel interface {
	Descriptor() domain.ModelDescriptor

	Initialize(ctx context.Context, cred *domain.Credential) error

	Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig, gctx *domain.GenerationContext) (domain.GenerationResult, error)

	Finalize() error
}
