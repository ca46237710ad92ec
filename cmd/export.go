package main

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/formatter"
	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/Rafamp34/soundstream/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExportRun exports one playlist by id, or every playlist of the signed-in
// user with --all.
func (r *Runner) ExportRun(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.String("id")
	all := cmd.Bool("all")

	if id == "" && !all {
		return fmt.Errorf("%w: either --id or --all must be provided", shared.ErrMissingArgument)
	}
	if id != "" && all {
		return fmt.Errorf("%w: cannot specify both --id and --all", shared.ErrInvalidArgument)
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	}

	r.logger.Info("starting export", "format", opts.Format, "all", all)
	r.writePlain("Exporting playlists...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportPlaylist:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	var result *formatter.BulkExportResult
	var err error
	if all {
		var userID string
		if userID, err = r.currentUser(ctx); err != nil {
			close(progressCh)
			return err
		}
		result, err = r.engine.ExportAll(ctx, progressCh, userID, opts)
	} else {
		result, err = r.engine.BulkExport(ctx, progressCh, []string{id}, opts)
	}
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Playlists: %d\n", result.TotalPlaylists)
	r.writePlain("Succeeded: %d\n", result.SuccessfulExports)
	r.writePlain("Failed: %d\n", result.FailedExports)
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed playlists:\n")
		for _, pr := range result.Results {
			if !pr.Success {
				r.writePlain("  - %s: %v\n", pr.PlaylistID, pr.Error)
			}
		}
	}

	return nil
}

// ExportDiff compares two playlists and prints the missing and extra songs.
func (r *Runner) ExportDiff(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	sourceID := cmd.String("source-id")
	destID := cmd.String("dest-id")

	r.logger.Info("diff requested", "source", sourceID, "dest", destID)
	r.writePlain("Comparing playlists...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 10)
	go func() {
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	result, err := r.engine.Diff(ctx, progressCh, sourceID, destID)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Source: %s (%d songs)\n", result.Source.Playlist.Name, len(result.Source.Songs))
	r.writePlain("✓ Destination: %s (%d songs)\n\n", result.Dest.Playlist.Name, len(result.Dest.Songs))

	r.writePlainHeader("Comparison Results")
	r.writePlain("Matched: %d songs\n", result.MatchedCount)
	r.writePlain("Missing from destination: %d songs\n", len(result.MissingInDest))
	r.writePlain("Extra in destination: %d songs\n\n", len(result.ExtraInDest))

	if len(result.MissingInDest) > 0 {
		r.writePlain("Missing from destination:\n")
		for i, song := range result.MissingInDest {
			r.writePlain("  %d. %s - %s", i+1, song.Author, song.Name)
			if song.Album != "" {
				r.writePlain(" (%s)", song.Album)
			}
			r.writePlain("\n")
		}
		r.writePlain("\n")
	}

	if len(result.ExtraInDest) > 0 {
		r.writePlain("Extra in destination (not in source):\n")
		for i, song := range result.ExtraInDest {
			r.writePlain("  %d. %s - %s", i+1, song.Author, song.Name)
			if song.Album != "" {
				r.writePlain(" (%s)", song.Album)
			}
			r.writePlain("\n")
		}
	}

	return nil
}
