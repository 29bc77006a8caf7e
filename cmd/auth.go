package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Auth runs the browser authorization flow even when a refresh token is stored,
// replacing the stored token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(); err != nil {
		return err
	}

	if err := r.authorize(ctx, true); err != nil {
		return err
	}

	r.logger.Info("authentication successful")
	return r.writePlain("✓ Refresh token saved to %s\n", r.config.Storage.TokenPath)
}

// Logout removes the stored refresh token. The grant itself stays valid until
// it is revoked from the Spotify account page.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(); err != nil {
		return err
	}

	if err := r.store.Delete(ctx); err != nil {
		return err
	}

	r.logger.Debug("refresh token removed", "path", r.config.Storage.TokenPath)
	return r.writePlain("✓ Removed stored refresh token\n")
}
