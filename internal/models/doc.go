// Package models defines the backend-independent domain model for the soundstream client.
//
// The package contains three categories of types:
//
// 1. Entities: the shapes feature code consumes, identical regardless of backend
//   - [Song] : A track with display duration and relation id lists
//   - [Playlist] : An ordered song collection owned by one or more users
//   - [User] : An account profile with follower/following/playlist relations
//   - [Image] : A media bundle with size-variant URLs
//
// 2. Patches: partial-update carriers with pointer fields
//   - [SongPatch], [PlaylistPatch], [UserPatch] : only non-nil fields are sent to the backend
//
// 3. Envelopes: [Page] wraps one page of results with pagination metadata.
//
// Entity ids are opaque strings assigned by whichever backend is active; they are
// empty before creation. Backends that use numeric or reference-typed ids coerce
// them at the mapping boundary, never here.
package models
