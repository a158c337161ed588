package spotify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	oauthspotify "golang.org/x/oauth2/spotify"

	"github.com/moodika/moodika/internal/core/domain"
	"github.com/moodika/moodika/internal/core/ports"
)

// Refresher performs the OAuth refresh-grant exchange against the Spotify
// accounts service: old refresh token in, new access+refresh pair out. It
// does not stamp IssuedAt; that belongs to the credential gate.
type Refresher struct {
	conf *oauth2.Config
	log  *zap.Logger
}

var _ ports.TokenRefresher = (*Refresher)(nil)

// NewRefresher constructs a refresher for the registered application.
// tokenURL overrides the accounts endpoint and is only set in tests.
func NewRefresher(clientID, clientSecret, tokenURL string, log *zap.Logger) *Refresher {
	endpoint := oauthspotify.Endpoint
	if tokenURL != "" {
		endpoint = oauth2.Endpoint{TokenURL: tokenURL}
	}
	return &Refresher{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
		},
		log: log,
	}
}

// Refresh exchanges the refresh token for a new credential pair.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	if refreshToken == "" {
		return domain.Credential{}, fmt.Errorf("spotify: empty refresh token: %w", domain.ErrUnauthorized)
	}

	token, err := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("spotify: refresh exchange: %w", err)
	}

	// The accounts service does not always rotate the refresh token; keep the
	// old one when no replacement comes back.
	newRefresh := token.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	r.log.Debug("access token refreshed")
	return domain.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: newRefresh,
	}, nil
}
