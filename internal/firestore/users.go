package firestore

import (
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
)

// UserMapping translates user profile documents, keyed by auth uid.
type UserMapping struct{}

// NewUserMapping creates the user mapping for the document-store backend.
func NewUserMapping() *UserMapping { return &UserMapping{} }

// One decodes a profile document. The username handle derives from the email
// local part; DisplayName joins the split name halves when both exist.
func (m *UserMapping) One(data []byte) (models.User, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return models.User{}, err
	}

	email := doc.Fields["email"].AsString()
	user := models.User{
		ID:          doc.ID(),
		Username:    models.EmailHandle(email),
		Email:       email,
		DisplayName: doc.Fields["displayName"].AsString(),
		Name:        doc.Fields["name"].AsString(),
		Surname:     doc.Fields["surname"].AsString(),
		Image:       bundleImage(doc.Fields["image"].AsString()),
		Followers:   doc.Fields["followers"].AsStrings(),
		Following:   doc.Fields["following"].AsStrings(),
		PlaylistIDs: doc.Fields["playlists_ids"].AsStrings(),
	}
	if user.DisplayName == "" && user.Name != "" && user.Surname != "" {
		user.DisplayName = user.Name + " " + user.Surname
	}
	return user, nil
}

func (m *UserMapping) Collection(page, pageSize, pages int, items [][]byte) (models.Page[models.User], error) {
	out := models.Page[models.User]{Page: page, PageSize: pageSize, Pages: pages, Items: make([]models.User, 0, len(items))}
	for _, item := range items {
		user, err := m.One(item)
		if err != nil {
			return models.Page[models.User]{}, err
		}
		out.Items = append(out.Items, user)
	}
	return out, nil
}

func (m *UserMapping) CreatePayload(user models.User) (any, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("user email is required")
	}

	fields := map[string]Value{
		"email":         String(user.Email),
		"followers":     StringArray(nil),
		"following":     StringArray(nil),
		"playlists_ids": StringArray(nil),
	}
	if user.DisplayName != "" {
		fields["displayName"] = String(user.DisplayName)
	}
	if user.Name != "" {
		fields["name"] = String(user.Name)
	}
	if user.Surname != "" {
		fields["surname"] = String(user.Surname)
	}
	if user.Image != nil {
		fields["image"] = String(user.Image.URL)
	}
	return &Document{Fields: fields}, nil
}

func (m *UserMapping) UpdatePayload(patch models.UserPatch) (any, error) {
	fields := map[string]Value{}
	if patch.DisplayName != nil {
		fields["displayName"] = String(*patch.DisplayName)
	}
	if patch.Name != nil {
		fields["name"] = String(*patch.Name)
	}
	if patch.Surname != nil {
		fields["surname"] = String(*patch.Surname)
	}
	if patch.Image != nil {
		fields["image"] = String(patch.Image.URL)
	}
	if patch.Followers != nil {
		fields["followers"] = StringArray(*patch.Followers)
	}
	if patch.Following != nil {
		fields["following"] = StringArray(*patch.Following)
	}
	if patch.PlaylistIDs != nil {
		fields["playlists_ids"] = StringArray(*patch.PlaylistIDs)
	}
	return &Document{Fields: fields}, nil
}

func (m *UserMapping) Added(data []byte) (models.User, error)   { return m.One(data) }
func (m *UserMapping) Updated(data []byte) (models.User, error) { return m.One(data) }
func (m *UserMapping) Deleted(data []byte) (models.User, error) { return m.One(data) }
