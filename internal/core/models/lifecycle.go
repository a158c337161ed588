// Package models holds the concrete recommendation strategies: the
// similarity-based model and the LLM-based model. Both implement
// ports.RecommenderModel and are single-use: the registry builds a fresh
// instance per generation request.
package models

import (
	"context"
	"fmt"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

type lifecycleState int

const (
	stateUninitialized lifecycleState = iota
	stateInitialized
	stateFinalized
)

// lifecycle enforces the Uninitialized -> Initialized -> Finalized state
// machine. It detects ordering violations; it does not serialize callers, so a
// model instance is not safe for concurrent use.
type lifecycle struct {
	state     lifecycleState
	generated bool
}

func (l *lifecycle) canInitialize() error {
	if l.state == stateFinalized {
		return fmt.Errorf("initialize after finalize: %w", domain.ErrLifecycle)
	}
	return nil
}

func (l *lifecycle) markInitialized() {
	l.state = stateInitialized
	l.generated = false
}

// beginGenerate claims the single Generate slot of the current Initialize.
func (l *lifecycle) beginGenerate() error {
	if l.state != stateInitialized {
		return fmt.Errorf("generate before initialize: %w", domain.ErrLifecycle)
	}
	if l.generated {
		return fmt.Errorf("generate called twice per initialize: %w", domain.ErrLifecycle)
	}
	l.generated = true
	return nil
}

func (l *lifecycle) markFinalized() {
	l.state = stateFinalized
}

// catalogSession ties the lifecycle guard to the catalog session obtained
// through the credential gate. Both strategies embed it.
type catalogSession struct {
	gate    ports.SessionGate
	state   lifecycle
	catalog ports.CatalogClient
}

func (s *catalogSession) open(ctx context.Context, cred *domain.Credential) error {
	if err := s.state.canInitialize(); err != nil {
		return err
	}
	catalog, err := s.gate.OpenSession(ctx, cred)
	if err != nil {
		return fmt.Errorf("open catalog session: %w", err)
	}
	s.catalog = catalog
	s.state.markInitialized()
	return nil
}

// close releases the session. Idempotent: closing an already finalized or
// never opened session is a no-op.
func (s *catalogSession) close() {
	s.catalog = nil
	s.state.markFinalized()
}
