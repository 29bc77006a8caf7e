package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/epx/internal/shared"
	"github.com/desertthunder/epx/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// isTerminal reports whether stdin and stdout are both terminals.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiLogPath is where logs go while the browser owns the terminal.
func tuiLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "epx", "tui.log")
}

// Browse authorizes, then opens the interactive episode browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	if !isTerminal() {
		return fmt.Errorf("%w: browse needs an interactive terminal, use list or delete instead", shared.ErrNotATerminal)
	}

	if err := r.ready(); err != nil {
		return err
	}
	if err := r.authorize(ctx, false); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	path := tuiLogPath()
	f, err := shared.OpenLogFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.logger.SetOutput(f)
	defer r.logger.SetOutput(os.Stderr)

	return ui.Run(ctx, &browseBackend{r: r})
}
