package firestore

import (
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
)

// PlaylistMapping translates playlists between document wire format and the
// domain. Song relations are reference arrays; member uids are plain string
// arrays because they key the users collection by auth uid.
type PlaylistMapping struct {
	parent string
}

// NewPlaylistMapping creates the playlist mapping for the document-store backend.
func NewPlaylistMapping(parent string) *PlaylistMapping { return &PlaylistMapping{parent: parent} }

func (m *PlaylistMapping) One(data []byte) (models.Playlist, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return models.Playlist{}, err
	}

	return models.Playlist{
		ID:       doc.ID(),
		Name:     doc.Fields["name"].AsString(),
		Author:   doc.Fields["author"].AsString(),
		Duration: models.NormalizeDuration(doc.Fields["duration"].AsString()),
		SongIDs:  doc.Fields["song_IDS"].AsStrings(),
		UserIDs:  doc.Fields["users_IDS"].AsStrings(),
		Image:    bundleImage(doc.Fields["image"].AsString()),
	}, nil
}

func (m *PlaylistMapping) Collection(page, pageSize, pages int, items [][]byte) (models.Page[models.Playlist], error) {
	out := models.Page[models.Playlist]{Page: page, PageSize: pageSize, Pages: pages, Items: make([]models.Playlist, 0, len(items))}
	for _, item := range items {
		playlist, err := m.One(item)
		if err != nil {
			return models.Page[models.Playlist]{}, err
		}
		out.Items = append(out.Items, playlist)
	}
	return out, nil
}

func (m *PlaylistMapping) CreatePayload(playlist models.Playlist) (any, error) {
	if playlist.Name == "" {
		return nil, fmt.Errorf("playlist name is required")
	}
	if len(playlist.UserIDs) == 0 {
		return nil, fmt.Errorf("playlist requires at least one member")
	}

	fields := map[string]Value{
		"name":      String(playlist.Name),
		"author":    String(playlist.Author),
		"duration":  String(playlist.Duration),
		"song_IDS":  ReferenceArray(m.parent, "songs", playlist.SongIDs),
		"users_IDS": StringArray(playlist.UserIDs),
	}
	if playlist.Image != nil {
		fields["image"] = String(playlist.Image.URL)
	}
	return &Document{Fields: fields}, nil
}

func (m *PlaylistMapping) UpdatePayload(patch models.PlaylistPatch) (any, error) {
	fields := map[string]Value{}
	if patch.Name != nil {
		fields["name"] = String(*patch.Name)
	}
	if patch.Author != nil {
		fields["author"] = String(*patch.Author)
	}
	if patch.Duration != nil {
		fields["duration"] = String(*patch.Duration)
	}
	if patch.SongIDs != nil {
		fields["song_IDS"] = ReferenceArray(m.parent, "songs", *patch.SongIDs)
	}
	if patch.UserIDs != nil {
		fields["users_IDS"] = StringArray(*patch.UserIDs)
	}
	if patch.Image != nil {
		fields["image"] = String(patch.Image.URL)
	}
	return &Document{Fields: fields}, nil
}

func (m *PlaylistMapping) Added(data []byte) (models.Playlist, error)   { return m.One(data) }
func (m *PlaylistMapping) Updated(data []byte) (models.Playlist, error) { return m.One(data) }
func (m *PlaylistMapping) Deleted(data []byte) (models.Playlist, error) { return m.One(data) }
