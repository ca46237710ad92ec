package firestore

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
)

// QueryHints tells a repository how contract filter keys land on document
// fields. Filter keys without an entry pass through unchanged as EQUAL
// constraints; fields listed in Array are queried with ARRAY_CONTAINS, which
// is how "playlists of user X" style filters work against array relations.
type QueryHints struct {
	Fields map[string]string
	Array  map[string]bool
	// Refs maps fields stored as document references to their collection,
	// so filter values are sent as reference paths instead of bare ids.
	Refs map[string]string
}

func (h QueryHints) resolve(key string) (field string, array bool) {
	field = key
	if h.Fields != nil {
		if mapped, ok := h.Fields[key]; ok {
			field = mapped
		}
	}
	return field, h.Array != nil && h.Array[field]
}

// Repository implements [repositories.Repository] over one document
// collection. Wire translation is delegated to the injected mapping, which
// must produce [*Document] payloads for this backend.
type Repository[T any, P any] struct {
	client     *Client
	collection string
	mapping    repositories.Mapping[T, P]
	hints      QueryHints
}

// NewRepository creates a repository over a collection of the client's database.
func NewRepository[T any, P any](client *Client, collection string, mapping repositories.Mapping[T, P], hints QueryHints) *Repository[T, P] {
	return &Repository[T, P]{client: client, collection: collection, mapping: mapping, hints: hints}
}

// GetAll queries the collection with filters translated to structured-query
// operators. The store exposes no page cursor this client uses, so the
// result is always a single page: Pages = 1 and every match in Items, with
// the envelope's PageSize widened to the true count rather than silently
// truncating. This is the documented limitation, not an approximation of a
// total the backend never reported.
func (r *Repository[T, P]) GetAll(ctx context.Context, page, pageSize int, filters repositories.SearchParams) (models.Page[T], error) {
	var zero models.Page[T]

	docs, err := r.client.RunQuery(ctx, r.collection, r.translate(filters))
	if err != nil {
		return zero, err
	}

	size := pageSize
	if len(docs) > size {
		size = len(docs)
	}
	return r.mapping.Collection(1, size, 1, docs)
}

// GetByID fetches one document, returning (nil, nil) when it does not exist.
func (r *Repository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	doc, found, err := r.client.GetDocument(ctx, r.collection, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	entity, err := r.mapping.One(doc)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Add stores a new document with a server-assigned id.
func (r *Repository[T, P]) Add(ctx context.Context, entity T) (T, error) {
	var zero T

	payload, err := r.mapping.CreatePayload(entity)
	if err != nil {
		return zero, err
	}
	doc, err := asDocument(payload)
	if err != nil {
		return zero, err
	}

	stored, err := r.client.CreateDocument(ctx, r.collection, doc)
	if err != nil {
		return zero, err
	}
	return r.mapping.Added(stored)
}

// Update merges the patch's fields into the stored document. The update mask
// is derived from exactly the fields the mapping emitted, so unspecified
// fields keep their prior value.
func (r *Repository[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T

	payload, err := r.mapping.UpdatePayload(patch)
	if err != nil {
		return zero, err
	}
	doc, err := asDocument(payload)
	if err != nil {
		return zero, err
	}

	stored, err := r.client.PatchDocument(ctx, r.collection, id, doc, doc.FieldPaths())
	if err != nil {
		return zero, err
	}
	return r.mapping.Updated(stored)
}

// Delete fetches the document's last-known state, removes it and returns
// that state. A missing id is the backend's error, passed through.
func (r *Repository[T, P]) Delete(ctx context.Context, id string) (T, error) {
	var zero T

	doc, found, err := r.client.GetDocument(ctx, r.collection, id)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, fmt.Errorf("document %s/%s does not exist", r.collection, id)
	}

	if err := r.client.DeleteDocument(ctx, r.collection, id); err != nil {
		return zero, err
	}
	return r.mapping.Deleted(doc)
}

// translate converts contract filters into structured-query constraints.
func (r *Repository[T, P]) translate(filters repositories.SearchParams) []queryFilter {
	out := make([]queryFilter, 0, len(filters))
	for key, cond := range filters {
		field, array := r.hints.resolve(key)

		switch {
		case len(cond.In) > 0:
			values := make([]Value, 0, len(cond.In))
			for _, term := range cond.In {
				values = append(values, r.term(field, term))
			}
			out = append(out, queryFilter{Field: field, Op: "IN", Value: Value{ArrayValue: &ArrayValue{Values: values}}})
		case array:
			out = append(out, queryFilter{Field: field, Op: "ARRAY_CONTAINS", Value: r.term(field, cond.Eq)})
		default:
			out = append(out, queryFilter{Field: field, Op: "EQUAL", Value: r.term(field, cond.Eq)})
		}
	}
	return out
}

// term builds one filter value, as a reference path for reference fields.
func (r *Repository[T, P]) term(field, value string) Value {
	if collection, ok := r.hints.Refs[field]; ok {
		return Reference(r.client.Parent() + "/" + collection + "/" + value)
	}
	return String(value)
}

// asDocument asserts that a mapping built its payload for this backend.
// A mismatch is a wiring bug caught at the first write, not a silent
// cross-backend payload.
func asDocument(payload any) (*Document, error) {
	doc, ok := payload.(*Document)
	if !ok {
		return nil, fmt.Errorf("mapping produced %T, want *firestore.Document", payload)
	}
	return doc, nil
}
