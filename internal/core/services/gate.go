package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

// CredentialGate fronts every catalog session with the credential validity
// rule: a credential is usable for one hour from IssuedAt, after which it is
// exchanged through the refresher before a session is opened.
//
// Refreshes for one principal are not mutually exclusive across concurrent
// requests: two requests arriving with the same stale credential may both
// exchange it, and the last persisted pair wins. The race is accepted, not
// guarded.
type CredentialGate struct {
	refresher ports.TokenRefresher
	catalog   ports.CatalogProvider
	log       *zap.Logger
	now       func() time.Time
}

var _ ports.SessionGate = (*CredentialGate)(nil)

// NewCredentialGate constructs a gate over the given refresher and catalog
// provider.
func NewCredentialGate(refresher ports.TokenRefresher, catalog ports.CatalogProvider, log *zap.Logger) *CredentialGate {
	return &CredentialGate{
		refresher: refresher,
		catalog:   catalog,
		log:       log,
		now:       time.Now,
	}
}

// OpenSession opens a catalog session for the credential, refreshing it first
// when it is outside its validity window. The refreshed pair and its new
// IssuedAt are written back through cred so the caller can persist them.
func (g *CredentialGate) OpenSession(ctx context.Context, cred *domain.Credential) (ports.CatalogClient, error) {
	if cred == nil || cred.RefreshToken == "" && cred.AccessToken == "" {
		return nil, fmt.Errorf("missing credential: %w", domain.ErrUnauthorized)
	}

	if !cred.ValidAt(g.now()) {
		refreshed, err := g.refresher.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("refresh access token: %s: %w", err, domain.ErrUnauthorized)
		}
		refreshed.IssuedAt = g.now()
		*cred = refreshed
		g.log.Info("credential refreshed", zap.Time("issued_at", refreshed.IssuedAt))
	}

	return g.catalog.Open(ctx, cred.AccessToken)
}
