package strapi

import (
	"encoding/json"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
)

// songAttributes is the wire shape of a song. Durations travel as integer
// seconds; relation ids are numeric.
type songAttributes struct {
	Name      string      `json:"name"`
	Author    string      `json:"author"`
	Album     string      `json:"album,omitempty"`
	Duration  json.Number `json:"duration"`
	Playlists *relation   `json:"playlistid_IDS,omitempty"`
	Artists   *relation   `json:"artistid_IDS,omitempty"`
	Image     *media      `json:"image,omitempty"`
}

// SongMapping translates songs between Strapi wire format and the domain.
type SongMapping struct{}

// NewSongMapping creates the song mapping for the Strapi backend.
func NewSongMapping() *SongMapping { return &SongMapping{} }

// One decodes a song entry. The numeric wire duration normalizes to the
// display form; missing optional fields stay absent on the domain side.
func (m *SongMapping) One(data []byte) (models.Song, error) {
	id, attrData, err := splitEntry(data)
	if err != nil {
		return models.Song{}, err
	}

	var attrs songAttributes
	if err := json.Unmarshal(attrData, &attrs); err != nil {
		return models.Song{}, fmt.Errorf("failed to decode song: %w", err)
	}

	return models.Song{
		ID:          id,
		Name:        attrs.Name,
		Author:      attrs.Author,
		Album:       attrs.Album,
		Duration:    models.NormalizeDuration(attrs.Duration.String()),
		Image:       attrs.Image.image(),
		PlaylistIDs: attrs.Playlists.ids(),
		ArtistIDs:   attrs.Artists.ids(),
	}, nil
}

func (m *SongMapping) Collection(page, pageSize, pages int, items [][]byte) (models.Page[models.Song], error) {
	return collection(page, pageSize, pages, items, m.One)
}

// CreatePayload builds the {"data": {...}} create body. The display duration
// converts back to the seconds the wire expects.
func (m *SongMapping) CreatePayload(song models.Song) (any, error) {
	if song.Name == "" || song.Author == "" {
		return nil, fmt.Errorf("song name and author are required")
	}

	fields := map[string]any{
		"name":     song.Name,
		"author":   song.Author,
		"duration": models.DurationSeconds(song.Duration),
	}
	if song.Album != "" {
		fields["album"] = song.Album
	}
	if song.PlaylistIDs != nil {
		fields["playlistid_IDS"] = relationIDs(song.PlaylistIDs)
	}
	if song.ArtistIDs != nil {
		fields["artistid_IDS"] = relationIDs(song.ArtistIDs)
	}
	return map[string]any{"data": fields}, nil
}

// UpdatePayload builds the patch body from the fields present in the patch,
// and nothing else.
func (m *SongMapping) UpdatePayload(patch models.SongPatch) (any, error) {
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Author != nil {
		fields["author"] = *patch.Author
	}
	if patch.Album != nil {
		fields["album"] = *patch.Album
	}
	if patch.Duration != nil {
		fields["duration"] = models.DurationSeconds(*patch.Duration)
	}
	if patch.PlaylistIDs != nil {
		fields["playlistid_IDS"] = relationIDs(*patch.PlaylistIDs)
	}
	if patch.ArtistIDs != nil {
		fields["artistid_IDS"] = relationIDs(*patch.ArtistIDs)
	}
	if patch.Image != nil {
		fields["image"] = mediaRef(patch.Image.URL)
	}
	return map[string]any{"data": fields}, nil
}

func (m *SongMapping) Added(data []byte) (models.Song, error)   { return m.One(data) }
func (m *SongMapping) Updated(data []byte) (models.Song, error) { return m.One(data) }
func (m *SongMapping) Deleted(data []byte) (models.Song, error) { return m.One(data) }
