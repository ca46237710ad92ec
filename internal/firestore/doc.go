// Package firestore implements the document-store backend over Firestore's
// REST API.
//
// Wire shapes based on https://firebase.google.com/docs/firestore/reference/rest:
// documents carry typed field values ({"stringValue": ...}), relations are
// arrays of reference values, queries go through :runQuery structured
// queries and partial updates use PATCH with an updateMask so writes merge
// at the field level, matching the REST backend's partial-update semantics.
//
// Key Implementations:
//   - [Client] : low-level document operations (get, create, patch, delete, query)
//   - [Repository] : generic CRUD executor over one collection
//   - [SongMapping], [PlaylistMapping], [UserMapping] : per-entity wire translation
//   - [Auth] : Identity Toolkit password authentication with token refresh and
//     profile provisioning on sign-up
//
// The store has no page cursor this client uses, so [Repository.GetAll]
// reports Pages = 1 and returns every match rather than fabricating a total
// it cannot know.
package firestore
