package strapi

import (
	"encoding/json"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
)

// playlistAttributes is the wire shape of a playlist. Durations are already
// display strings on this resource; song and user relations are numeric ids.
type playlistAttributes struct {
	Name     string    `json:"name"`
	Author   string    `json:"author"`
	Duration string    `json:"duration"`
	Songs    *relation `json:"song_IDS,omitempty"`
	Users    *relation `json:"users_IDS,omitempty"`
	Image    *media    `json:"image,omitempty"`
}

// PlaylistMapping translates playlists between Strapi wire format and the domain.
type PlaylistMapping struct{}

// NewPlaylistMapping creates the playlist mapping for the Strapi backend.
func NewPlaylistMapping() *PlaylistMapping { return &PlaylistMapping{} }

func (m *PlaylistMapping) One(data []byte) (models.Playlist, error) {
	id, attrData, err := splitEntry(data)
	if err != nil {
		return models.Playlist{}, err
	}

	var attrs playlistAttributes
	if err := json.Unmarshal(attrData, &attrs); err != nil {
		return models.Playlist{}, fmt.Errorf("failed to decode playlist: %w", err)
	}

	return models.Playlist{
		ID:       id,
		Name:     attrs.Name,
		Author:   attrs.Author,
		Duration: models.NormalizeDuration(attrs.Duration),
		SongIDs:  attrs.Songs.ids(),
		UserIDs:  attrs.Users.ids(),
		Image:    attrs.Image.image(),
	}, nil
}

func (m *PlaylistMapping) Collection(page, pageSize, pages int, items [][]byte) (models.Page[models.Playlist], error) {
	return collection(page, pageSize, pages, items, m.One)
}

func (m *PlaylistMapping) CreatePayload(playlist models.Playlist) (any, error) {
	if playlist.Name == "" {
		return nil, fmt.Errorf("playlist name is required")
	}
	if len(playlist.UserIDs) == 0 {
		return nil, fmt.Errorf("playlist requires at least one member")
	}

	fields := map[string]any{
		"name":      playlist.Name,
		"author":    playlist.Author,
		"duration":  playlist.Duration,
		"song_IDS":  relationIDs(playlist.SongIDs),
		"users_IDS": relationIDs(playlist.UserIDs),
	}
	return map[string]any{"data": fields}, nil
}

func (m *PlaylistMapping) UpdatePayload(patch models.PlaylistPatch) (any, error) {
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Author != nil {
		fields["author"] = *patch.Author
	}
	if patch.Duration != nil {
		fields["duration"] = *patch.Duration
	}
	if patch.SongIDs != nil {
		fields["song_IDS"] = relationIDs(*patch.SongIDs)
	}
	if patch.UserIDs != nil {
		fields["users_IDS"] = relationIDs(*patch.UserIDs)
	}
	if patch.Image != nil {
		fields["image"] = mediaRef(patch.Image.URL)
	}
	return map[string]any{"data": fields}, nil
}

func (m *PlaylistMapping) Added(data []byte) (models.Playlist, error)   { return m.One(data) }
func (m *PlaylistMapping) Updated(data []byte) (models.Playlist, error) { return m.One(data) }
func (m *PlaylistMapping) Deleted(data []byte) (models.Playlist, error) { return m.One(data) }
