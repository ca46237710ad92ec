package main

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints the signed-in user's playlists, or every playlist
// with --all.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	if cmd.Bool("all") {
		page, err := r.playlists.List(ctx, 1, 100)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(page, true)
		}
		r.writePlain("Playlists (page %d of %d)\n\n", page.Page, page.Pages)
		for i, playlist := range page.Items {
			r.writePlain("%d. %s by %s (%d songs) [%s]\n", i+1, playlist.Name, playlist.Author, len(playlist.SongIDs), playlist.Duration)
			r.writePlain("   ID: %s\n", playlist.ID)
		}
		return nil
	}

	userID, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	playlists, err := r.playlists.AllOfUser(ctx, userID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists yet\n")
	}

	r.writePlain("Your playlists:\n\n")
	for i, playlist := range playlists {
		r.writePlain("%d. %s (%d songs) [%s]\n", i+1, playlist.Name, len(playlist.SongIDs), playlist.Duration)
		r.writePlain("   ID: %s\n", playlist.ID)
	}
	return nil
}

// PlaylistsShow prints a playlist and its resolved songs.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.Get(ctx, id)
	if err != nil {
		return err
	}

	songs, err := r.playlists.Songs(ctx, playlist)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"playlist": playlist, "songs": songs}, true)
	}

	r.writePlainHeader(playlist.Name)
	r.writePlain("Author: %s\n", playlist.Author)
	r.writePlain("Duration: %s\n", playlist.Duration)
	r.writePlain("Songs: %d\n\n", len(songs))
	for i, song := range songs {
		r.writePlain("%d. %s - %s", i+1, song.Author, song.Name)
		if song.Album != "" {
			r.writePlain(" (%s)", song.Album)
		}
		r.writePlain(" [%s]\n", song.Duration)
	}
	return nil
}

// PlaylistsCreate creates a playlist owned by the signed-in user.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	userID, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	author := cmd.String("author")
	if author == "" {
		user, err := r.container.Auth.CurrentUser(ctx)
		if err == nil && user != nil {
			author = user.Handle()
		}
	}

	playlist, err := r.playlists.Create(ctx, name, author, userID)
	if err != nil {
		return err
	}

	r.logger.Info("playlist created", "id", playlist.ID, "name", playlist.Name)
	return r.writePlain("✓ Created playlist %s (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistsDelete deletes a playlist.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	removed, err := r.playlists.Remove(ctx, id)
	if err != nil {
		return err
	}

	r.logger.Info("playlist removed", "id", removed.ID)
	return r.writePlain("✓ Deleted playlist %s\n", removed.Name)
}

// PlaylistsAddSong adds a song to a playlist, keeping both sides of the
// membership in sync.
func (r *Runner) PlaylistsAddSong(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	playlist, err := r.playlists.AddSong(ctx, cmd.String("playlist-id"), cmd.String("song-id"))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added song to %s (%d songs)\n", playlist.Name, len(playlist.SongIDs))
}

// PlaylistsRemoveSong removes a song from a playlist.
func (r *Runner) PlaylistsRemoveSong(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	playlist, err := r.playlists.RemoveSong(ctx, cmd.String("playlist-id"), cmd.String("song-id"))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Removed song from %s (%d songs)\n", playlist.Name, len(playlist.SongIDs))
}

// PlaylistsOpen opens a playlist in the configured web player.
func (r *Runner) PlaylistsOpen(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.Get(ctx, id)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/playlists/%s", r.config.Web.PlayerURL, playlist.ID)
	r.logger.Info("opening playlist in browser", "url", url)

	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("✓ Opened %s\n", url)
}
