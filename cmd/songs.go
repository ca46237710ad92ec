package main

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsList prints a page of the song catalog.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	page := cmd.Int("page")
	pageSize := cmd.Int("page-size")

	result, err := r.songs.List(ctx, page, pageSize)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("Songs (page %d of %d)\n\n", result.Page, result.Pages)
	for i, song := range result.Items {
		r.writePlain("%d. %s - %s", i+1, song.Author, song.Name)
		if song.Album != "" {
			r.writePlain(" (%s)", song.Album)
		}
		r.writePlain(" [%s]\n", song.Duration)
		r.writePlain("   ID: %s\n", song.ID)
	}
	return nil
}

// SongsGet prints a single song.
func (r *Runner) SongsGet(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	song, err := r.songs.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}

	r.writePlain("%s - %s\n", song.Author, song.Name)
	if song.Album != "" {
		r.writePlain("Album: %s\n", song.Album)
	}
	r.writePlain("Duration: %s\n", song.Duration)
	r.writePlain("ID: %s\n", song.ID)
	if len(song.PlaylistIDs) > 0 {
		r.writePlain("In %d playlist(s)\n", len(song.PlaylistIDs))
	}
	return nil
}

// SongsSearch searches the catalog by name.
func (r *Runner) SongsSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}

	r.logger.Info("searching songs", "name", name)

	songs, err := r.songs.Search(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	if len(songs) == 0 {
		return r.writePlain("No songs matched %q\n", name)
	}

	r.writePlain("Found %d song(s):\n\n", len(songs))
	for i, song := range songs {
		r.writePlain("%d. %s - %s [%s]\n", i+1, song.Author, song.Name, song.Duration)
		r.writePlain("   ID: %s\n", song.ID)
	}
	return nil
}

// SongsAdd creates a song in the catalog.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	song := models.Song{
		Name:     cmd.String("name"),
		Author:   cmd.String("author"),
		Album:    cmd.String("album"),
		Duration: models.NormalizeDuration(cmd.String("duration")),
	}

	created, err := r.songs.Create(ctx, song)
	if err != nil {
		return err
	}

	r.logger.Info("song created", "id", created.ID)
	return r.writePlain("✓ Created song %s (%s - %s)\n", created.ID, created.Author, created.Name)
}

// SongsUpdate applies a partial update to a song.
func (r *Runner) SongsUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	var patch models.SongPatch
	changed := false
	if v := cmd.String("name"); v != "" {
		patch.Name = models.Ptr(v)
		changed = true
	}
	if v := cmd.String("author"); v != "" {
		patch.Author = models.Ptr(v)
		changed = true
	}
	if v := cmd.String("album"); v != "" {
		patch.Album = models.Ptr(v)
		changed = true
	}
	if v := cmd.String("duration"); v != "" {
		patch.Duration = models.Ptr(models.NormalizeDuration(v))
		changed = true
	}
	if !changed {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	updated, err := r.songs.Update(ctx, id, patch)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated song %s (%s - %s)\n", updated.ID, updated.Author, updated.Name)
}

// SongsDelete removes a song from the catalog.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	removed, err := r.songs.Remove(ctx, id)
	if err != nil {
		return err
	}

	r.logger.Info("song removed", "id", removed.ID)
	return r.writePlain("✓ Deleted song %s\n", removed.ID)
}
