package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// PlaylistService implements playlist composition over the playlist and song
// repositories. Membership changes keep both relation sides consistent and
// recompute the playlist's derived duration.
type PlaylistService struct {
	playlists repositories.Repository[models.Playlist, models.PlaylistPatch]
	songs     *SongService
	logger    *log.Logger
}

func NewPlaylistService(
	playlists repositories.Repository[models.Playlist, models.PlaylistPatch],
	songs *SongService,
	logger *log.Logger,
) *PlaylistService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistService{
		playlists: playlists,
		songs:     songs,
		logger:    shared.WithLogger(logger, "service", "playlists"),
	}
}

// List returns one page of all playlists.
func (s *PlaylistService) List(ctx context.Context, page, pageSize int) (models.Page[models.Playlist], error) {
	return s.playlists.GetAll(ctx, page, pageSize, nil)
}

// AllOfUser returns every playlist the user is a member of.
func (s *PlaylistService) AllOfUser(ctx context.Context, userID string) ([]models.Playlist, error) {
	page, err := s.playlists.GetAll(ctx, 1, 100, repositories.SearchParams{"user": repositories.Eq(userID)})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Get fetches one playlist; a missing id is [shared.ErrPlaylistNotFound].
func (s *PlaylistService) Get(ctx context.Context, id string) (models.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return models.Playlist{}, err
	}
	if playlist == nil {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return *playlist, nil
}

// Songs expands a playlist's song list in playlist order.
func (s *PlaylistService) Songs(ctx context.Context, playlist models.Playlist) ([]models.Song, error) {
	return s.songs.ByIDs(ctx, playlist.SongIDs)
}

// Create stores a new playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, name, author, ownerID string) (models.Playlist, error) {
	if name == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}
	if ownerID == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist owner is required", shared.ErrInvalidInput)
	}

	return s.playlists.Add(ctx, models.Playlist{
		Name:     name,
		Author:   author,
		Duration: "0:00",
		SongIDs:  []string{},
		UserIDs:  []string{ownerID},
	})
}

// Update applies a partial update.
func (s *PlaylistService) Update(ctx context.Context, id string, patch models.PlaylistPatch) (models.Playlist, error) {
	return s.playlists.Update(ctx, id, patch)
}

// Remove deletes a playlist, detaching it from every song that references it.
func (s *PlaylistService) Remove(ctx context.Context, id string) (models.Playlist, error) {
	playlist, err := s.playlists.Delete(ctx, id)
	if err != nil {
		return models.Playlist{}, err
	}

	for _, songID := range playlist.SongIDs {
		if err := s.detachSong(ctx, songID, id); err != nil {
			s.logger.Warn("failed to detach song from removed playlist", "song", songID, "err", err)
		}
	}
	return playlist, nil
}

// AddSong appends a song to the playlist. Adding a song that is already a
// member is a no-op, not an error.
func (s *PlaylistService) AddSong(ctx context.Context, playlistID, songID string) (models.Playlist, error) {
	playlist, err := s.Get(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	song, err := s.songs.Get(ctx, songID)
	if err != nil {
		return models.Playlist{}, err
	}

	for _, id := range playlist.SongIDs {
		if id == songID {
			return playlist, nil
		}
	}

	songIDs := append(append([]string{}, playlist.SongIDs...), songID)
	updated, err := s.writeMembership(ctx, playlist.ID, songIDs)
	if err != nil {
		return models.Playlist{}, err
	}

	playlistIDs := append(append([]string{}, song.PlaylistIDs...), playlist.ID)
	if _, err := s.songs.Update(ctx, songID, models.SongPatch{PlaylistIDs: &playlistIDs}); err != nil {
		s.logger.Warn("failed to update song side of the relation", "song", songID, "err", err)
	}
	return updated, nil
}

// RemoveSong removes a song from the playlist. Removing a non-member is a
// no-op, not an error.
func (s *PlaylistService) RemoveSong(ctx context.Context, playlistID, songID string) (models.Playlist, error) {
	playlist, err := s.Get(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}

	songIDs := make([]string, 0, len(playlist.SongIDs))
	for _, id := range playlist.SongIDs {
		if id != songID {
			songIDs = append(songIDs, id)
		}
	}
	if len(songIDs) == len(playlist.SongIDs) {
		return playlist, nil
	}

	updated, err := s.writeMembership(ctx, playlist.ID, songIDs)
	if err != nil {
		return models.Playlist{}, err
	}

	if err := s.detachSong(ctx, songID, playlist.ID); err != nil {
		s.logger.Warn("failed to update song side of the relation", "song", songID, "err", err)
	}
	return updated, nil
}

// writeMembership persists a new song list together with the recomputed
// duration, in a single patch.
func (s *PlaylistService) writeMembership(ctx context.Context, playlistID string, songIDs []string) (models.Playlist, error) {
	resolved, err := s.songs.ByIDs(ctx, songIDs)
	if err != nil {
		return models.Playlist{}, err
	}
	duration := models.SumDurations(resolved)

	return s.playlists.Update(ctx, playlistID, models.PlaylistPatch{
		SongIDs:  &songIDs,
		Duration: &duration,
	})
}

// detachSong removes a playlist id from one song's relation list.
func (s *PlaylistService) detachSong(ctx context.Context, songID, playlistID string) error {
	song, err := s.songs.Get(ctx, songID)
	if err != nil {
		return err
	}

	playlistIDs := make([]string, 0, len(song.PlaylistIDs))
	for _, id := range song.PlaylistIDs {
		if id != playlistID {
			playlistIDs = append(playlistIDs, id)
		}
	}
	if len(playlistIDs) == len(song.PlaylistIDs) {
		return nil
	}
	_, err = s.songs.Update(ctx, songID, models.SongPatch{PlaylistIDs: &playlistIDs})
	return err
}
