package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// SongService implements catalog use cases over the song repository.
type SongService struct {
	songs  repositories.Repository[models.Song, models.SongPatch]
	logger *log.Logger
}

func NewSongService(songs repositories.Repository[models.Song, models.SongPatch], logger *log.Logger) *SongService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SongService{songs: songs, logger: shared.WithLogger(logger, "service", "songs")}
}

// List returns one page of the catalog.
func (s *SongService) List(ctx context.Context, page, pageSize int) (models.Page[models.Song], error) {
	return s.songs.GetAll(ctx, page, pageSize, nil)
}

// Search finds songs by exact name.
func (s *SongService) Search(ctx context.Context, name string) ([]models.Song, error) {
	page, err := s.songs.GetAll(ctx, 1, 25, repositories.SearchParams{"name": repositories.Eq(name)})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Get fetches one song; a missing id is [shared.ErrSongNotFound].
func (s *SongService) Get(ctx context.Context, id string) (models.Song, error) {
	song, err := s.songs.GetByID(ctx, id)
	if err != nil {
		return models.Song{}, err
	}
	if song == nil {
		return models.Song{}, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return *song, nil
}

// ByIDs resolves songs preserving the requested order, used to expand a
// playlist's song list. Unknown ids are skipped, not errors: a dangling
// relation must not break playlist rendering.
func (s *SongService) ByIDs(ctx context.Context, ids []string) ([]models.Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	page, err := s.songs.GetAll(ctx, 1, len(ids), repositories.SearchParams{"id": repositories.In(ids...)})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Song, len(page.Items))
	for _, song := range page.Items {
		byID[song.ID] = song
	}

	out := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		if song, ok := byID[id]; ok {
			out = append(out, song)
			continue
		}
		s.logger.Warn("skipping dangling song relation", "id", id)
	}
	return out, nil
}

// Create validates and stores a new song.
func (s *SongService) Create(ctx context.Context, song models.Song) (models.Song, error) {
	if song.Name == "" || song.Author == "" {
		return models.Song{}, fmt.Errorf("%w: song name and author are required", shared.ErrInvalidInput)
	}
	song.Duration = models.NormalizeDuration(song.Duration)
	return s.songs.Add(ctx, song)
}

// Update applies a partial update.
func (s *SongService) Update(ctx context.Context, id string, patch models.SongPatch) (models.Song, error) {
	return s.songs.Update(ctx, id, patch)
}

// Remove deletes a song and returns its last state.
func (s *SongService) Remove(ctx context.Context, id string) (models.Song, error) {
	return s.songs.Delete(ctx, id)
}
