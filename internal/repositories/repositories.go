// package repositories defines the CRUD and mapping contracts shared by all backends
package repositories

import (
	"context"
	"io"

	"github.com/Rafamp34/soundstream/internal/models"
)

// Repository is the CRUD contract implemented by every backend executor.
//
// T is the domain entity, P its patch type. Implementations must behave
// identically in shape so callers cannot distinguish the active backend:
//   - GetAll returns a [models.Page] envelope; backends without native
//     pagination report Pages = 1 instead of fabricating a total.
//   - GetByID returns (nil, nil) when the id does not exist; absence is not
//     an error at this level.
//   - Add fails if required fields are missing and returns the entity as
//     stored, with its backend-assigned id.
//   - Update applies only the fields present in the patch; everything else
//     retains its prior value.
//   - Delete returns the entity as it existed immediately before deletion
//     and fails if the id does not exist.
type Repository[T any, P any] interface {
	GetAll(ctx context.Context, page, pageSize int, filters SearchParams) (models.Page[T], error)
	GetByID(ctx context.Context, id string) (*T, error)
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}

// Mapping translates between one backend's wire format and the domain model
// for one entity type. Implementations must be pure and total: One never
// fails on absent optional wire fields, it omits them from the domain value.
// Type coercion (numeric ids to strings, seconds to display durations)
// happens here and nowhere else.
type Mapping[T any, P any] interface {
	// One decodes a single wire object into a domain entity.
	One(data []byte) (T, error)

	// Collection decodes a page of wire objects into a [models.Page].
	Collection(page, pageSize, pages int, items [][]byte) (models.Page[T], error)

	// CreatePayload builds the wire create payload for an entity.
	CreatePayload(entity T) (any, error)

	// UpdatePayload builds the wire patch payload, including only the keys
	// present in the patch.
	UpdatePayload(patch P) (any, error)

	// Added, Updated and Deleted decode the backend's echo of a write.
	// They default to One unless a backend shapes write responses differently.
	Added(data []byte) (T, error)
	Updated(data []byte) (T, error)
	Deleted(data []byte) (T, error)
}

// Uploader is the media upload collaborator consumed by profile and playlist
// image flows. Upload sends one blob and returns the backend's identifiers
// (or URLs) for the stored variants.
type Uploader interface {
	Upload(ctx context.Context, filename string, blob io.Reader) ([]string, error)
}
