// submodule cmd contains command definitions
package main

import (
	"context"
	"strings"

	"github.com/desertthunder/epx/internal/formatter"
	"github.com/desertthunder/epx/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// app builds the root command. Without a subcommand it runs the interactive prompt.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "epx",
		Usage:   "List or clear the saved episodes in Spotify's 'Your Episodes'",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
				Sources: cli.EnvVars("EPX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.before,
		Action:   r.Interactive,
		Commands: r.register(),
	}
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")
	if cmd.Bool("verbose") {
		r.verbose = true
		shared.SetLogLevel(r.logger, "debug")
	}
	return ctx, nil
}

func formatNames() string {
	names := make([]string, 0, len(formatter.Formats))
	for _, f := range formatter.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// listCommand prints saved episodes
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all saved episodes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (" + formatNames() + ")",
				Value:   string(formatter.Text),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.List,
	}
}

// deleteCommand removes every saved episode
func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm", "clear"},
		Usage:   "Delete all episodes from 'Your Episodes' in batches",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show how many episodes and batches would be deleted",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
		},
		Action: r.Delete,
	}
}

// browseCommand opens the TUI
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui"},
		Usage:   "Select episodes to delete in an interactive browser",
		Action:  r.Browse,
	}
}

// authCommand forces a new authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authorize with Spotify in the browser and store a new refresh token",
		Action: r.Auth,
	}
}

// logoutCommand forgets the stored refresh token
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Remove the stored refresh token",
		Action: r.Logout,
	}
}

// configCommand manages the config file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file helpers",
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write an example config file",
				ArgsUsage: "[path]",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the resolved configuration",
				Action: r.ConfigShow,
			},
		},
	}
}
