package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/epx/internal/models"
	"github.com/desertthunder/epx/internal/server"
	"github.com/desertthunder/epx/internal/services"
	"github.com/desertthunder/epx/internal/shared"
	"github.com/desertthunder/epx/internal/tasks"
)

// expiryMargin is how early an access token is treated as expired.
const expiryMargin = time.Minute

// session is the authorized state for one run. Tokens never leave memory
// except the refresh token, which goes through the token store.
type session struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	// stored is the refresh token last read from or written to the store.
	stored string
}

func (s *session) expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && now.Add(expiryMargin).After(s.expiresAt)
}

// notice prints a status line to output, or to errOutput while output carries
// machine-readable data.
func (r *Runner) notice(format string, args ...any) {
	if r.quiet {
		fmt.Fprintf(r.errOutput, format, args...)
		return
	}
	r.writePlain(format, args...)
}

// adopt takes the tokens from pair, keeping the current refresh token when none was issued.
func (r *Runner) adopt(pair services.TokenPair) {
	r.session.accessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		r.session.refreshToken = pair.RefreshToken
	}
	r.session.expiresAt = time.Time{}
	if pair.ExpiresIn > 0 {
		r.session.expiresAt = time.Now().Add(time.Duration(pair.ExpiresIn) * time.Second)
	}
}

// persist saves the session's refresh token when it differs from the stored one.
func (r *Runner) persist(ctx context.Context) error {
	token := r.session.refreshToken
	if token == "" || token == r.session.stored {
		return nil
	}
	if err := r.store.Save(ctx, token); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	r.session.stored = token
	r.logger.Debug("refresh token saved")
	return nil
}

// authorize establishes an access token, preferring the stored refresh token
// unless force is set. A refresh token the provider rejects falls back to the
// browser flow.
func (r *Runner) authorize(ctx context.Context, force bool) error {
	stored, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load refresh token: %w", err)
	}
	r.session.stored = stored

	if stored != "" && !force {
		r.notice("Using saved refresh token.\n")

		r.session.refreshToken = stored
		pair, err := r.auth.RefreshAccessToken(ctx, stored)
		if err == nil {
			r.adopt(pair)
			if err := r.persist(ctx); err != nil {
				return err
			}
			r.notice("Access token refreshed.\n")
			return nil
		}

		switch shared.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized:
			r.logger.Warn("saved refresh token was rejected, authorizing again", "error", err)
			r.session.refreshToken = ""
		default:
			return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
		}
	}

	return r.runAuthorizationFlow(ctx)
}

// runAuthorizationFlow sends the user to the consent page and exchanges the
// code delivered to the redirect URI.
func (r *Runner) runAuthorizationFlow(ctx context.Context) error {
	r.notice("Step 1: Authorize the app\n")

	state := shared.GenerateState()
	authURL := r.auth.AuthorizationURL(state)

	code, err := r.capture(ctx, state, func() {
		r.notice("Open this URL in your browser and authorize the app:\n%s\n", authURL)
		if err := r.openBrowser(authURL); err != nil {
			r.logger.Debug("could not open browser", "error", err)
		}
		r.notice("Waiting for authorization code...\n")
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	pair, err := r.auth.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}
	r.adopt(pair)
	if err := r.persist(ctx); err != nil {
		return err
	}

	r.logger.Debug("authorization code exchanged", "expires_in", pair.ExpiresIn)
	r.notice("Authorization complete.\n")
	return nil
}

// captureCode serves the redirect URI on a [server.Listener] until a code
// arrives, the auth timeout passes, or ctx ends.
func (r *Runner) captureCode(ctx context.Context, state string, ready func()) (string, error) {
	listener, err := server.NewListener(server.ListenerOptions{
		RedirectURI: r.config.Spotify.RedirectURI,
		State:       state,
		Logger:      r.logger,
	})
	if err != nil {
		return "", err
	}
	if err := listener.Start(); err != nil {
		return "", err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := listener.Stop(stopCtx); err != nil {
			r.logger.Warn("failed to stop listener", "error", err)
		}
	}()

	if timeout := r.config.Server.AuthTimeout.Duration; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.logger.Debug("waiting for redirect", "addr", listener.Addr())
	ready()
	return listener.CaptureCode(ctx)
}

// refresh exchanges the session's refresh token and persists a rotated one.
func (r *Runner) refresh(ctx context.Context) error {
	if r.session.refreshToken == "" {
		return shared.ErrNoRefreshToken
	}
	pair, err := r.auth.RefreshAccessToken(ctx, r.session.refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	r.adopt(pair)
	return r.persist(ctx)
}

// ensureFresh refreshes ahead of calls that cannot report a 401, such as deletes.
func (r *Runner) ensureFresh(ctx context.Context) error {
	if !r.session.expired(time.Now()) || r.session.refreshToken == "" {
		return nil
	}
	r.logger.Debug("access token near expiry, refreshing")
	return r.refresh(ctx)
}

// withReauth calls fn with the current access token. A 401 triggers a single
// refresh and one retry when a refresh token is held.
func (r *Runner) withReauth(ctx context.Context, fn func(accessToken string) error) error {
	err := fn(r.session.accessToken)
	if err == nil || !shared.IsUnauthorized(err) || r.session.refreshToken == "" {
		return err
	}

	r.notice("Access token expired. Refreshing...\n")
	if err := r.refresh(ctx); err != nil {
		return err
	}
	r.notice("New access token acquired\n")

	return fn(r.session.accessToken)
}

func (r *Runner) allEpisodes(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	err := r.withReauth(ctx, func(token string) error {
		var err error
		episodes, err = r.episodes.AllSavedEpisodes(ctx, token)
		return err
	})
	return episodes, err
}

func (r *Runner) allEpisodeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.withReauth(ctx, func(token string) error {
		var err error
		ids, err = r.episodes.AllSavedEpisodeIDs(ctx, token)
		return err
	})
	return ids, err
}

func (r *Runner) purge(ctx context.Context, ids []string, progress chan<- tasks.ProgressUpdate) (*tasks.PurgeResult, error) {
	if err := r.ensureFresh(ctx); err != nil {
		return nil, err
	}
	return r.engine.Purge(ctx, r.session.accessToken, ids, progress)
}

// browseBackend exposes an authorized [Runner] to the episode browser.
type browseBackend struct {
	r *Runner
}

// LoadEpisodes refreshes silently on a 401 since the TUI owns the terminal.
func (b *browseBackend) LoadEpisodes(ctx context.Context) ([]models.Episode, error) {
	episodes, err := b.r.episodes.AllSavedEpisodes(ctx, b.r.session.accessToken)
	if err == nil || !shared.IsUnauthorized(err) || b.r.session.refreshToken == "" {
		return episodes, err
	}
	if err := b.r.refresh(ctx); err != nil {
		return nil, err
	}
	return b.r.episodes.AllSavedEpisodes(ctx, b.r.session.accessToken)
}

func (b *browseBackend) Purge(ctx context.Context, ids []string, progress chan<- tasks.ProgressUpdate) (*tasks.PurgeResult, error) {
	return b.r.purge(ctx, ids, progress)
}
