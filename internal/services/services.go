// package services implements the Spotify accounts and Web API clients
package services

import (
	"context"

	"github.com/desertthunder/epx/internal/models"
)

// TokenPair is the result of a code exchange or refresh.
//
// RefreshToken is empty only when the provider never issued one.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Authenticator drives the Authorization Code flow against the accounts service.
type Authenticator interface {
	// AuthorizationURL returns the consent page URL carrying state.
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for a [TokenPair].
	ExchangeCode(ctx context.Context, code string) (TokenPair, error)

	// RefreshAccessToken obtains a new access token from a refresh token.
	RefreshAccessToken(ctx context.Context, refreshToken string) (TokenPair, error)
}

// EpisodeLister reads the user's saved episodes.
type EpisodeLister interface {
	// SavedEpisodes returns the first page at the server's default size.
	SavedEpisodes(ctx context.Context, accessToken string) (*models.EpisodePage, error)

	// AllSavedEpisodes follows pagination until the last page.
	AllSavedEpisodes(ctx context.Context, accessToken string) ([]models.Episode, error)

	// AllSavedEpisodeIDs is [EpisodeLister.AllSavedEpisodes] reduced to ids.
	AllSavedEpisodeIDs(ctx context.Context, accessToken string) ([]string, error)
}

// EpisodeRemover deletes saved episodes.
type EpisodeRemover interface {
	// RemoveEpisodes issues a single delete request and reports success.
	// Callers keep len(ids) within [MaxIDsPerRequest].
	RemoveEpisodes(ctx context.Context, accessToken string, ids []string) bool
}

// EpisodeClient is the full saved-episodes surface used by the CLI.
type EpisodeClient interface {
	EpisodeLister
	EpisodeRemover
}

var (
	_ Authenticator = (*AuthClient)(nil)
	_ EpisodeClient = (*EpisodeService)(nil)
)
