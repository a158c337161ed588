package ports

import (
	"context"

	"github.com/moodika/moodika/internal/core/domain"
)

// CredentialStore persists catalog credentials per principal. It belongs to
// the caller's persistence layer; the core only reads through it in the batch
// driver and writes back rotated credentials.
type CredentialStore interface {
	Get(ctx context.Context, principal string) (domain.Credential, error)
	Update(ctx context.Context, principal string, cred domain.Credential) (domain.Credential, error)
}

// TokenRefresher performs the refresh exchange against the identity
// collaborator: old refresh token in, new access+refresh pair out.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (domain.Credential, error)
}

// SessionGate opens a catalog session for a credential, refreshing it first
// when it is outside its validity window. A refreshed credential is written
// back through the pointer so the caller can persist it.
type SessionGate interface {
	OpenSession(ctx context.Context, cred *domain.Credential) (CatalogClient, error)
}
