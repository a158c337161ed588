package domain

import (
	"testing"
	"time"
)

func TestCredential_ValidAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cred Credential
		want bool
	}{
		{
			name: "inside window",
			cred: Credential{AccessToken: "tok", IssuedAt: now.Add(-30 * time.Minute)},
			want: true,
		},
		{
			name: "just issued",
			cred: Credential{AccessToken: "tok", IssuedAt: now},
			want: true,
		},
		{
			name: "at exact expiry",
			cred: Credential{AccessToken: "tok", IssuedAt: now.Add(-CredentialTTL)},
			want: false,
		},
		{
			name: "past expiry",
			cred: Credential{AccessToken: "tok", IssuedAt: now.Add(-2 * time.Hour)},
			want: false,
		},
		{
			name: "no access token",
			cred: Credential{IssuedAt: now},
			want: false,
		},
		{
			name: "zero issue time",
			cred: Credential{AccessToken: "tok"},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.ValidAt(now); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
