package firestore

import (
	"encoding/json"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
)

// bundleImage expands a single stored URL into the domain image bundle; the
// store keeps one URL, so every variant repeats it. An empty URL maps to
// absent, not a placeholder.
func bundleImage(url string) *models.Image {
	if url == "" {
		return nil
	}
	return &models.Image{URL: url, Large: url, Medium: url, Small: url, Thumbnail: url}
}

// decodeDocument is the shared first step of every mapping's One.
func decodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// SongMapping translates songs between document wire format and the domain.
// Playlist relations are stored as arrays of document references; the parent
// path is needed to rebuild them on writes.
type SongMapping struct {
	parent string
}

// NewSongMapping creates the song mapping for the document-store backend.
func NewSongMapping(parent string) *SongMapping { return &SongMapping{parent: parent} }

func (m *SongMapping) One(data []byte) (models.Song, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return models.Song{}, err
	}

	return models.Song{
		ID:          doc.ID(),
		Name:        doc.Fields["name"].AsString(),
		Author:      doc.Fields["author"].AsString(),
		Album:       doc.Fields["album"].AsString(),
		Duration:    models.NormalizeDuration(doc.Fields["duration"].AsString()),
		Image:       bundleImage(doc.Fields["image"].AsString()),
		PlaylistIDs: doc.Fields["playlistid_IDS"].AsStrings(),
		ArtistIDs:   doc.Fields["artistid_IDS"].AsStrings(),
	}, nil
}

func (m *SongMapping) Collection(page, pageSize, pages int, items [][]byte) (models.Page[models.Song], error) {
	out := models.Page[models.Song]{Page: page, PageSize: pageSize, Pages: pages, Items: make([]models.Song, 0, len(items))}
	for _, item := range items {
		song, err := m.One(item)
		if err != nil {
			return models.Page[models.Song]{}, err
		}
		out.Items = append(out.Items, song)
	}
	return out, nil
}

func (m *SongMapping) CreatePayload(song models.Song) (any, error) {
	if song.Name == "" || song.Author == "" {
		return nil, fmt.Errorf("song name and author are required")
	}

	fields := map[string]Value{
		"name":     String(song.Name),
		"author":   String(song.Author),
		"duration": String(models.NormalizeDuration(song.Duration)),
	}
	if song.Album != "" {
		fields["album"] = String(song.Album)
	}
	if song.Image != nil {
		fields["image"] = String(song.Image.URL)
	}
	if song.PlaylistIDs != nil {
		fields["playlistid_IDS"] = ReferenceArray(m.parent, "playlists", song.PlaylistIDs)
	}
	if song.ArtistIDs != nil {
		fields["artistid_IDS"] = StringArray(song.ArtistIDs)
	}
	return &Document{Fields: fields}, nil
}

func (m *SongMapping) UpdatePayload(patch models.SongPatch) (any, error) {
	fields := map[string]Value{}
	if patch.Name != nil {
		fields["name"] = String(*patch.Name)
	}
	if patch.Author != nil {
		fields["author"] = String(*patch.Author)
	}
	if patch.Album != nil {
		fields["album"] = String(*patch.Album)
	}
	if patch.Duration != nil {
		fields["duration"] = String(models.NormalizeDuration(*patch.Duration))
	}
	if patch.Image != nil {
		fields["image"] = String(patch.Image.URL)
	}
	if patch.PlaylistIDs != nil {
		fields["playlistid_IDS"] = ReferenceArray(m.parent, "playlists", *patch.PlaylistIDs)
	}
	if patch.ArtistIDs != nil {
		fields["artistid_IDS"] = StringArray(*patch.ArtistIDs)
	}
	return &Document{Fields: fields}, nil
}

func (m *SongMapping) Added(data []byte) (models.Song, error)   { return m.One(data) }
func (m *SongMapping) Updated(data []byte) (models.Song, error) { return m.One(data) }
func (m *SongMapping) Deleted(data []byte) (models.Song, error) { return m.One(data) }
