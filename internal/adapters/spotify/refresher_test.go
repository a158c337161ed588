package spotify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/moodika/moodika/internal/core/domain"
)

func TestRefresher_Refresh(t *testing.T) {
	var gotGrant, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotGrant = r.FormValue("grant_type")
		gotToken = r.FormValue("refresh_token")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token": "new-access", "refresh_token": "new-refresh",
			"token_type": "Bearer", "expires_in": 3600}`)
	}))
	defer srv.Close()

	r := NewRefresher("client-id", "client-secret", srv.URL, zap.NewNop())

	cred, err := r.Refresh(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if gotGrant != "refresh_token" || gotToken != "old-refresh" {
		t.Fatalf("unexpected exchange request: grant=%q token=%q", gotGrant, gotToken)
	}
	if cred.AccessToken != "new-access" || cred.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected credential %+v", cred)
	}
	// IssuedAt stamping belongs to the credential gate.
	if !cred.IssuedAt.IsZero() {
		t.Fatalf("expected zero IssuedAt, got %v", cred.IssuedAt)
	}
}

func TestRefresher_Refresh_KeepsOldTokenWithoutRotation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token": "new-access", "token_type": "Bearer", "expires_in": 3600}`)
	}))
	defer srv.Close()

	r := NewRefresher("client-id", "client-secret", srv.URL, zap.NewNop())

	cred, err := r.Refresh(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if cred.RefreshToken != "old-refresh" {
		t.Fatalf("expected old refresh token kept, got %q", cred.RefreshToken)
	}
}

func TestRefresher_Refresh_Failures(t *testing.T) {
	t.Run("empty refresh token", func(t *testing.T) {
		r := NewRefresher("client-id", "client-secret", "", zap.NewNop())
		_, err := r.Refresh(context.Background(), "")
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("exchange rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error": "invalid_grant"}`)
		}))
		defer srv.Close()

		r := NewRefresher("client-id", "client-secret", srv.URL, zap.NewNop())
		if _, err := r.Refresh(context.Background(), "revoked"); err == nil {
			t.Fatal("expected error for rejected exchange")
		}
	})
}
