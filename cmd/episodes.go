package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/epx/internal/formatter"
	"github.com/urfave/cli/v3"
)

const menu = `
What would you like to do?
1. List all episodes (prettified)
2. Delete all episodes from 'My Episodes'
Enter 1 or 2: `

// Interactive authorizes, then asks whether to list or delete all saved episodes.
//
// Any answer other than 1 or 2 prints "Invalid choice." and exits cleanly.
func (r *Runner) Interactive(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(); err != nil {
		return err
	}
	if err := r.authorize(ctx, false); err != nil {
		return err
	}

	r.writePlain(menu)
	choice, err := r.input.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read choice: %w", err)
	}

	switch strings.TrimSpace(choice) {
	case "1":
		return r.listEpisodes(ctx, formatter.Text, "")
	case "2":
		return r.deleteAll(ctx, false)
	default:
		r.writePlain("Invalid choice.\n")
		return nil
	}
}

// List prints every saved episode, or writes them to --output.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	r.quiet = output == "" && format != formatter.Text

	if err := r.ready(); err != nil {
		return err
	}
	if err := r.authorize(ctx, false); err != nil {
		return err
	}

	return r.listEpisodes(ctx, format, output)
}

// Delete removes every saved episode in batches.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	r.quiet = cmd.Bool("json")

	if err := r.ready(); err != nil {
		return err
	}
	if err := r.authorize(ctx, false); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.deleteAllJSON(ctx, cmd.Bool("dry-run"))
	}
	return r.deleteAll(ctx, cmd.Bool("dry-run"))
}

func (r *Runner) listEpisodes(ctx context.Context, format formatter.Format, output string) error {
	episodes, err := r.allEpisodes(ctx)
	if err != nil {
		return err
	}

	if output != "" {
		n, err := formatter.WriteExport(output, episodes, format)
		if err != nil {
			return err
		}
		r.logger.Debug("export written", "path", output, "bytes", n)
		r.writePlain("✓ Wrote %d episodes to %s\n", len(episodes), output)
		return nil
	}

	if format == formatter.Text {
		r.writePlainln("Your Saved Episodes:")
	}
	return formatter.Print(r.output, episodes, format)
}

func (r *Runner) deleteAll(ctx context.Context, dryRun bool) error {
	ids, err := r.allEpisodeIDs(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		r.writePlain("No episodes to delete.\n")
		return nil
	}

	if dryRun {
		batches := r.engine.Plan(ids)
		r.writePlain("Would delete %d episodes in %d batches of up to %d.\n", len(ids), len(batches), r.engine.BatchSize())
		return nil
	}

	r.writePlain("Deleting %d episodes...\n", len(ids))
	result, err := r.purge(ctx, ids, nil)
	if result != nil {
		for _, failure := range result.Failed {
			r.writePlain("Failed to delete batch %d.\n", failure.Index)
		}
	}
	if err != nil {
		return fmt.Errorf("delete interrupted: %w", err)
	}

	if result.Succeeded() {
		r.writePlain("All episodes deleted from 'My Episodes'.\n")
	} else {
		r.writePlain("Deleted %d of %d episodes; %d batches failed.\n", result.Removed, result.Total, len(result.Failed))
	}
	return nil
}

// deleteSummary is the machine-readable outcome of a delete.
type deleteSummary struct {
	Total         int      `json:"total"`
	Batches       int      `json:"batches"`
	Removed       int      `json:"removed"`
	FailedBatches []int    `json:"failed_batches"`
	FailedIDs     []string `json:"failed_ids"`
	DryRun        bool     `json:"dry_run"`
}

func (r *Runner) deleteAllJSON(ctx context.Context, dryRun bool) error {
	ids, err := r.allEpisodeIDs(ctx)
	if err != nil {
		return err
	}

	summary := deleteSummary{Total: len(ids), FailedBatches: []int{}, FailedIDs: []string{}, DryRun: dryRun}
	if dryRun || len(ids) == 0 {
		summary.Batches = len(r.engine.Plan(ids))
		return r.writeJSON(summary, true)
	}

	result, err := r.purge(ctx, ids, nil)
	if err != nil {
		return fmt.Errorf("delete interrupted: %w", err)
	}
	summary.Batches = result.Batches
	summary.Removed = result.Removed
	for _, f := range result.Failed {
		summary.FailedBatches = append(summary.FailedBatches, f.Index)
	}
	if failed := result.FailedIDs(); failed != nil {
		summary.FailedIDs = failed
	}
	return r.writeJSON(summary, true)
}
