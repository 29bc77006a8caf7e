package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/epx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// AuthOptions configures an [AuthClient]. AuthURL and TokenURL default to the Spotify accounts service.
type AuthOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
	Logger       *log.Logger
}

// AuthClient talks to the Spotify accounts service using [oauth2].
//
// Code exchange sends client credentials in the form body while refresh uses
// HTTP Basic authentication, so two configs are kept.
type AuthClient struct {
	exchange   *oauth2.Config
	refresh    *oauth2.Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewAuthClient creates an [AuthClient]. Missing client credentials are not
// validated locally; the provider rejects them.
func NewAuthClient(opts AuthOptions) *AuthClient {
	if opts.AuthURL == "" {
		opts.AuthURL = spotifyAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	refresh := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       opts.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   opts.AuthURL,
			TokenURL:  opts.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	exchange := *refresh
	exchange.Endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &AuthClient{
		exchange:   &exchange,
		refresh:    refresh,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// AuthorizationURL returns the consent page URL for the configured client, redirect URI and scopes.
func (a *AuthClient) AuthorizationURL(state string) string {
	return a.exchange.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for tokens.
func (a *AuthClient) ExchangeCode(ctx context.Context, code string) (TokenPair, error) {
	if code == "" {
		return TokenPair{}, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	tok, err := a.exchange.Exchange(a.withClient(ctx), code)
	if err != nil {
		return TokenPair{}, tokenError("code exchange", err)
	}

	a.logger.Debug("exchanged authorization code", "expires_in", expiresIn(tok), "refresh_token", tok.RefreshToken != "")
	return pairFrom(tok, ""), nil
}

// RefreshAccessToken trades a refresh token for a new access token. When the
// response omits a refresh token the returned pair keeps refreshToken.
func (a *AuthClient) RefreshAccessToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, shared.ErrNoRefreshToken
	}

	src := a.refresh.TokenSource(a.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return TokenPair{}, tokenError("token refresh", err)
	}

	pair := pairFrom(tok, refreshToken)
	a.logger.Debug("refreshed access token", "expires_in", pair.ExpiresIn, "rotated", pair.RefreshToken != refreshToken)
	return pair, nil
}

func (a *AuthClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

func pairFrom(tok *oauth2.Token, fallbackRefresh string) TokenPair {
	pair := TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn(tok),
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = fallbackRefresh
	}
	return pair
}

func expiresIn(tok *oauth2.Token) int {
	if tok.ExpiresIn > 0 {
		return int(tok.ExpiresIn)
	}
	if !tok.Expiry.IsZero() {
		return int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return 0
}

// tokenError converts an [oauth2.RetrieveError] into a [shared.APIError] carrying the provider body.
func tokenError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return fmt.Errorf("%s: %w", op, shared.NewAPIError(re.Response.StatusCode, string(re.Body), shared.ErrAuthFailed))
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, op, err)
}
