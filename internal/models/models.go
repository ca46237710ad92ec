// package models defines the data model shared by every backend
package models

// Image represents an uploaded picture with its size variants.
// Backends that store a single URL repeat it across every variant.
type Image struct {
	URL       string `json:"url"`
	Large     string `json:"large,omitempty"`
	Medium    string `json:"medium,omitempty"`
	Small     string `json:"small,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Song represents a track in the catalog.
//
// Duration is always the normalized display form (M:SS or H:MM:SS) regardless
// of how the active backend stores it; see [NormalizeDuration].
type Song struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Album       string   `json:"album,omitempty"`
	Duration    string   `json:"duration"`
	Image       *Image   `json:"image,omitempty"`
	PlaylistIDs []string `json:"playlistIds,omitempty"` // playlists containing this song
	ArtistIDs   []string `json:"artistIds,omitempty"`
}

// Playlist represents a song collection.
//
// UserIDs is never empty for a stored playlist; the first entry is treated as
// the owner by convention.
type Playlist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Author   string   `json:"author"`
	Duration string   `json:"duration"`
	SongIDs  []string `json:"songIds"`
	UserIDs  []string `json:"userIds"`
	Image    *Image   `json:"image,omitempty"`
}

// Owner returns the conventional owner id, or "" for an unowned playlist.
func (p Playlist) Owner() string {
	if len(p.UserIDs) == 0 {
		return ""
	}
	return p.UserIDs[0]
}

// User represents an account profile.
//
// Username is the handle derived from the email local part when the backend
// does not store one. DisplayName is "Name Surname" when the backend stores
// the two halves split.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName,omitempty"`
	Name        string   `json:"name,omitempty"`
	Surname     string   `json:"surname,omitempty"`
	Image       *Image   `json:"image,omitempty"`
	Followers   []string `json:"followers,omitempty"`
	Following   []string `json:"following,omitempty"`
	PlaylistIDs []string `json:"playlistIds,omitempty"`
}

// Handle returns the user's username, falling back to the email local part.
func (u User) Handle() string {
	if u.Username != "" {
		return u.Username
	}
	return EmailHandle(u.Email)
}
