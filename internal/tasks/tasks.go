package tasks

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// PlaylistSource provides the playlist reads the export engine needs.
// Satisfied by services.PlaylistService.
type PlaylistSource interface {
	Get(ctx context.Context, id string) (models.Playlist, error)
	AllOfUser(ctx context.Context, userID string) ([]models.Playlist, error)
	Songs(ctx context.Context, playlist models.Playlist) ([]models.Song, error)
}

// PlaylistDiffResult contains song comparison details between two playlists.
type PlaylistDiffResult struct {
	Source        *models.PlaylistExport // Source playlist with songs
	Dest          *models.PlaylistExport // Destination playlist with songs
	MatchedCount  int                    // Songs found in both
	MissingInDest []models.Song          // Songs in source but not in dest
	ExtraInDest   []models.Song          // Songs in dest but not in source
}

// ExportEngine implements playlist export and comparison operations.
type ExportEngine struct {
	source PlaylistSource
}

// NewExportEngine creates a new ExportEngine backed by the given playlist source.
func NewExportEngine(source PlaylistSource) *ExportEngine {
	return &ExportEngine{source: source}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export fetches a playlist and its songs as a single export document.
func (e *ExportEngine) Export(ctx context.Context, id string) (*models.PlaylistExport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	playlist, err := e.source.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	songs, err := e.source.Songs(ctx, playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve songs for %s: %w", id, err)
	}

	return &models.PlaylistExport{Playlist: playlist, Songs: songs}, nil
}

// Diff compares two playlists and identifies differences.
func (e *ExportEngine) Diff(ctx context.Context, progress chan<- ProgressUpdate, sourceID, destID string) (*PlaylistDiffResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	result := &PlaylistDiffResult{}

	e.sendProgress(progress, fetchPlaylistUpdate(1, 2, sourceID))
	sourceExport, err := e.Export(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export source playlist: %v", shared.ErrPlaylistNotFound, err)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(2, 2, destID))
	destExport, err := e.Export(ctx, destID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export destination playlist: %v", shared.ErrPlaylistNotFound, err)
	}

	result.Source = sourceExport
	result.Dest = destExport

	e.sendProgress(progress, compareUpdate(1, 2))
	destIDs := make(map[string]models.Song)
	destKeys := make(map[string]models.Song)
	for _, song := range destExport.Songs {
		destIDs[song.ID] = song
		destKeys[shared.NormalizeSongKey(song.Name, song.Author)] = song
	}

	e.sendProgress(progress, compareUpdate(2, 2))
	for _, src := range sourceExport.Songs {
		if songMatches(src, destIDs, destKeys) {
			result.MatchedCount++
		} else {
			result.MissingInDest = append(result.MissingInDest, src)
		}
	}

	sourceIDs := make(map[string]models.Song)
	sourceKeys := make(map[string]models.Song)
	for _, song := range sourceExport.Songs {
		sourceIDs[song.ID] = song
		sourceKeys[shared.NormalizeSongKey(song.Name, song.Author)] = song
	}

	for _, dest := range destExport.Songs {
		if !songMatches(dest, sourceIDs, sourceKeys) {
			result.ExtraInDest = append(result.ExtraInDest, dest)
		}
	}

	return result, nil
}

func songMatches(song models.Song, byID, byKey map[string]models.Song) bool {
	if _, found := byID[song.ID]; found {
		return true
	}
	_, found := byKey[shared.NormalizeSongKey(song.Name, song.Author)]
	return found
}
