package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

type mockRefresher struct {
	calls  int
	result domain.Credential
	err    error
}

func (m *mockRefresher) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	m.calls++
	if m.err != nil {
		return domain.Credential{}, m.err
	}
	return m.result, nil
}

type mockCatalogProvider struct {
	opened    int
	lastToken string
	openErr   error
	client    ports.CatalogClient
}

func (m *mockCatalogProvider) Open(ctx context.Context, accessToken string) (ports.CatalogClient, error) {
	m.opened++
	m.lastToken = accessToken
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.client, nil
}

func TestCredentialGate_OpenSession(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		cred        *domain.Credential
		refresher   *mockRefresher
		wantErr     error
		wantRefresh int
		wantToken   string
	}{
		{
			name: "fresh credential skips refresh",
			cred: &domain.Credential{
				AccessToken:  "fresh-token",
				RefreshToken: "refresh",
				IssuedAt:     now.Add(-30 * time.Minute),
			},
			refresher:   &mockRefresher{},
			wantRefresh: 0,
			wantToken:   "fresh-token",
		},
		{
			name: "stale credential refreshed once",
			cred: &domain.Credential{
				AccessToken:  "stale-token",
				RefreshToken: "refresh",
				IssuedAt:     now.Add(-2 * time.Hour),
			},
			refresher: &mockRefresher{
				result: domain.Credential{AccessToken: "new-token", RefreshToken: "new-refresh"},
			},
			wantRefresh: 1,
			wantToken:   "new-token",
		},
		{
			name: "credential at exact expiry refreshed",
			cred: &domain.Credential{
				AccessToken:  "edge-token",
				RefreshToken: "refresh",
				IssuedAt:     now.Add(-domain.CredentialTTL),
			},
			refresher: &mockRefresher{
				result: domain.Credential{AccessToken: "new-token", RefreshToken: "new-refresh"},
			},
			wantRefresh: 1,
			wantToken:   "new-token",
		},
		{
			name: "refresh failure maps to unauthorized",
			cred: &domain.Credential{
				AccessToken:  "stale-token",
				RefreshToken: "refresh",
				IssuedAt:     now.Add(-2 * time.Hour),
			},
			refresher:   &mockRefresher{err: errors.New("invalid_grant")},
			wantErr:     domain.ErrUnauthorized,
			wantRefresh: 1,
		},
		{
			name:        "nil credential rejected",
			cred:        nil,
			refresher:   &mockRefresher{},
			wantErr:     domain.ErrUnauthorized,
			wantRefresh: 0,
		},
		{
			name:        "empty credential rejected",
			cred:        &domain.Credential{},
			refresher:   &mockRefresher{},
			wantErr:     domain.ErrUnauthorized,
			wantRefresh: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockCatalogProvider{}
			gate := NewCredentialGate(tt.refresher, provider, zap.NewNop())
			gate.now = func() time.Time { return now }

			_, err := gate.OpenSession(context.Background(), tt.cred)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if provider.opened != 0 {
					t.Fatalf("expected no session on error, got %d opens", provider.opened)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if provider.lastToken != tt.wantToken {
					t.Fatalf("expected session opened with %q, got %q", tt.wantToken, provider.lastToken)
				}
			}

			if tt.refresher.calls != tt.wantRefresh {
				t.Fatalf("expected %d refresh calls, got %d", tt.wantRefresh, tt.refresher.calls)
			}
		})
	}
}

func TestCredentialGate_OpenSession_MutatesCredentialForPersistence(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cred := domain.Credential{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		IssuedAt:     now.Add(-90 * time.Minute),
	}

	refresher := &mockRefresher{
		result: domain.Credential{AccessToken: "rotated", RefreshToken: "rotated-refresh"},
	}
	gate := NewCredentialGate(refresher, &mockCatalogProvider{}, zap.NewNop())
	gate.now = func() time.Time { return now }

	if _, err := gate.OpenSession(context.Background(), &cred); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cred.AccessToken != "rotated" || cred.RefreshToken != "rotated-refresh" {
		t.Fatalf("expected rotated pair written back, got %+v", cred)
	}
	if !cred.IssuedAt.Equal(now) {
		t.Fatalf("expected IssuedAt stamped to now, got %v", cred.IssuedAt)
	}
	if !cred.ValidAt(now.Add(59 * time.Minute)) {
		t.Fatal("expected refreshed credential valid within the hour")
	}
	if cred.ValidAt(now.Add(61 * time.Minute)) {
		t.Fatal("expected refreshed credential stale after the hour")
	}
}
