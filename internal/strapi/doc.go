// Package strapi implements the REST (Strapi v4) backend.
//
// Wire shapes based on https://docs.strapi.io/dev-docs/api/rest: entities
// travel as {id, attributes} entries inside data envelopes, lists carry
// meta.pagination, filters use filters[field][$eq] / [$in] query operators
// and relations are numeric-id entries that the mappings coerce to the
// domain's opaque string ids.
//
// Key Implementations:
//   - [Repository] : generic CRUD executor over one resource collection
//   - [SongMapping], [PlaylistMapping], [UserMapping] : per-entity wire translation
//   - [Auth] : password -> JWT authentication with session restore
//   - [Media] : multipart upload to the Strapi media library
//
// Every outbound request attaches the current bearer token when one exists;
// a missing token does not block the call, the server decides rejection.
package strapi
