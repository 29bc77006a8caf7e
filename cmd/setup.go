package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/epx/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to the given path, or to --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		path = defaultConfigPath
	}

	r.logger.Info("creating config file from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set %s and %s, or fill in [spotify] in %s\n", shared.EnvClientID, shared.EnvClientSecret, path)
	r.writePlain("2. Register %s as a redirect URI for your Spotify app\n", shared.DefaultRedirectURI)
	r.writePlain("3. Run 'epx auth' to authorize\n")
	return nil
}

// ConfigShow prints the resolved configuration as TOML with the client secret masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(); err != nil {
		return err
	}

	view := *r.config
	if view.Spotify.ClientSecret != "" {
		view.Spotify.ClientSecret = "********"
	}
	if err := toml.NewEncoder(r.output).Encode(view); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
