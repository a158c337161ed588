package domain

import "time"

// CredentialTTL is the validity window of an access token since it was issued.
const CredentialTTL = time.Hour

// Credential is the catalog access credential for one principal. It is owned
// by the caller's persistence layer and passed into the core by pointer per
// request; the core never stores it, it only rotates it through a refresh
// exchange and hands the new value back.
type Credential struct {
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
}

// ValidAt reports whether the credential is still inside its validity window
// at the given instant.
func (c Credential) ValidAt(now time.Time) bool {
	if c.AccessToken == "" || c.IssuedAt.IsZero() {
		return false
	}
	return now.Sub(c.IssuedAt) < CredentialTTL
}
