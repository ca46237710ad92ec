// Package services implements the application use cases over the repository
// contracts: catalog search, playlist composition and the social graph.
//
// Services never talk to a backend directly. They consume
// [repositories.Repository] instances from the backend container and are
// therefore identical regardless of which backend is active; a service test
// against the in-memory double covers both.
//
// # Relations
//
// Song membership is stored on both sides (a playlist's song list and a
// song's playlist list), so every composition operation patches both
// entities. Playlist durations are derived data, recomputed from the songs
// after every membership change.
//
// # Identity
//
// Operations that mutate the signed-in user's profile push the fresh entity
// into the [auth.State] holder, so subscribers observe profile changes the
// same way they observe sign-in and sign-out.
package services
