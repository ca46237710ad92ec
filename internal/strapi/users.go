package strapi

import (
	"encoding/json"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
)

// userAttributes is the wire shape of a users-permissions user. These arrive
// flat (no attributes envelope) and name/surname are stored split.
type userAttributes struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Surname   string    `json:"surname,omitempty"`
	Followers *relation `json:"followers_IDS,omitempty"`
	Following *relation `json:"following_IDS,omitempty"`
	Playlists *relation `json:"playlists_IDS,omitempty"`
	Image     *media    `json:"image,omitempty"`
}

// UserMapping translates users between Strapi wire format and the domain.
type UserMapping struct{}

// NewUserMapping creates the user mapping for the Strapi backend.
func NewUserMapping() *UserMapping { return &UserMapping{} }

// One decodes a user. DisplayName joins the split name halves; the handle
// falls back to the email local part when the backend has no username.
func (m *UserMapping) One(data []byte) (models.User, error) {
	id, attrData, err := splitEntry(data)
	if err != nil {
		return models.User{}, err
	}

	var attrs userAttributes
	if err := json.Unmarshal(attrData, &attrs); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user: %w", err)
	}

	user := models.User{
		ID:          id,
		Username:    attrs.Username,
		Email:       attrs.Email,
		Name:        attrs.Name,
		Surname:     attrs.Surname,
		Image:       attrs.Image.image(),
		Followers:   attrs.Followers.ids(),
		Following:   attrs.Following.ids(),
		PlaylistIDs: attrs.Playlists.ids(),
	}
	if user.Username == "" {
		user.Username = models.EmailHandle(attrs.Email)
	}
	if attrs.Name != "" && attrs.Surname != "" {
		user.DisplayName = attrs.Name + " " + attrs.Surname
	}
	return user, nil
}

func (m *UserMapping) Collection(page, pageSize, pages int, items [][]byte) (models.Page[models.User], error) {
	return collection(page, pageSize, pages, items, m.One)
}

func (m *UserMapping) CreatePayload(user models.User) (any, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("user email is required")
	}
	fields := map[string]any{
		"username": user.Handle(),
		"email":    user.Email,
	}
	if user.Name != "" {
		fields["name"] = user.Name
	}
	if user.Surname != "" {
		fields["surname"] = user.Surname
	}
	return fields, nil
}

func (m *UserMapping) UpdatePayload(patch models.UserPatch) (any, error) {
	fields := map[string]any{}
	if patch.Username != nil {
		fields["username"] = *patch.Username
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Surname != nil {
		fields["surname"] = *patch.Surname
	}
	if patch.Followers != nil {
		fields["followers_IDS"] = relationIDs(*patch.Followers)
	}
	if patch.Following != nil {
		fields["following_IDS"] = relationIDs(*patch.Following)
	}
	if patch.PlaylistIDs != nil {
		fields["playlists_IDS"] = relationIDs(*patch.PlaylistIDs)
	}
	if patch.Image != nil {
		fields["image"] = mediaRef(patch.Image.URL)
	}
	return fields, nil
}

func (m *UserMapping) Added(data []byte) (models.User, error)   { return m.One(data) }
func (m *UserMapping) Updated(data []byte) (models.User, error) { return m.One(data) }
func (m *UserMapping) Deleted(data []byte) (models.User, error) { return m.One(data) }
