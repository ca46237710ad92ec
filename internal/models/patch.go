package models

// Patch types carry partial updates. Only non-nil fields reach the wire,
// which is what guarantees unspecified fields retain their prior value on
// both backends.

// SongPatch is a partial update for [Song].
type SongPatch struct {
	Name        *string
	Author      *string
	Album       *string
	Duration    *string
	Image       *Image
	PlaylistIDs *[]string
	ArtistIDs   *[]string
}

// PlaylistPatch is a partial update for [Playlist].
type PlaylistPatch struct {
	Name     *string
	Author   *string
	Duration *string
	SongIDs  *[]string
	UserIDs  *[]string
	Image    *Image
}

// UserPatch is a partial update for [User].
type UserPatch struct {
	Username    *string
	DisplayName *string
	Name        *string
	Surname     *string
	Image       *Image
	Followers   *[]string
	Following   *[]string
	PlaylistIDs *[]string
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T { return &v }
