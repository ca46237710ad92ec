// Package repositories defines the backend-agnostic data-access contracts.
//
// Every feature talks to a [Repository], every repository translates through a
// [Mapping], and neither side knows which backend is active. The two concrete
// executors live in internal/strapi and internal/firestore; the choice between
// them is made exactly once, in internal/backend.
//
// Key contracts:
//   - [Repository] : CRUD against one backend, generic over entity and patch type
//   - [Mapping] : wire format <-> domain translation for one (entity, backend) pair
//   - [SearchParams] : backend-independent equality/inclusion filters
//   - [Uploader] : media upload collaborator for image flows
//
// All operations take a [context.Context] and block until the backend answers;
// callers compose them with goroutines when they need concurrency. Errors from
// the backend pass through unmodified: no retry, no backoff, no suppression.
package repositories
