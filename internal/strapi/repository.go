package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// Repository implements [repositories.Repository] against one Strapi
// resource collection. It is mapping-agnostic: wire translation is delegated
// entirely to the injected mapping instance.
type Repository[T any, P any] struct {
	httpClient *http.Client
	token      auth.TokenProvider
	apiURL     string
	resource   string
	mapping    repositories.Mapping[T, P]
	logger     *log.Logger
}

// NewRepository creates a repository for a resource under apiURL.
// token may come from any [auth.TokenProvider]; requests without an
// available token proceed unauthenticated and the server decides rejection.
func NewRepository[T any, P any](
	client *http.Client,
	token auth.TokenProvider,
	apiURL, resource string,
	mapping repositories.Mapping[T, P],
	logger *log.Logger,
) *Repository[T, P] {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Repository[T, P]{
		httpClient: client,
		token:      token,
		apiURL:     apiURL,
		resource:   resource,
		mapping:    mapping,
		logger:     shared.WithLogger(logger, "backend", "strapi", "resource", resource),
	}
}

// GetAll retrieves one page of entities with filters translated to Strapi
// query operators. When the server answers with a bare array (resources that
// skip the pagination envelope), everything arrives as a single page.
func (r *Repository[T, P]) GetAll(ctx context.Context, page, pageSize int, filters repositories.SearchParams) (models.Page[T], error) {
	var zero models.Page[T]

	query := buildQuery(page, pageSize, filters)
	body, status, err := r.doRequest(ctx, http.MethodGet, r.collectionURL()+"?"+query.Encode(), nil)
	if err != nil {
		return zero, err
	}
	if status < 200 || status >= 300 {
		return zero, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}

	// users-permissions style resources return a flat array with no envelope.
	// The envelope's PageSize widens to the true count so one oversized page
	// never reports more items than it claims to hold.
	if len(body) > 0 && body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return zero, fmt.Errorf("failed to decode response: %w", err)
		}
		size := pageSize
		if len(items) > size {
			size = len(items)
		}
		return r.mapping.Collection(1, size, 1, rawItems(items))
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}

	pages := envelope.Meta.Pagination.PageCount
	if pages == 0 {
		pages = 1
	}
	return r.mapping.Collection(page, pageSize, pages, rawItems(envelope.Data))
}

// GetByID retrieves a single entity, returning (nil, nil) when it does not exist.
func (r *Repository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	body, status, err := r.doRequest(ctx, http.MethodGet, r.entityURL(id)+"?populate=*", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}

	entity, err := r.mapping.One(unwrapItem(body))
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Add creates an entity and returns it as stored, with its assigned id.
func (r *Repository[T, P]) Add(ctx context.Context, entity T) (T, error) {
	var zero T

	payload, err := r.mapping.CreatePayload(entity)
	if err != nil {
		return zero, err
	}

	body, status, err := r.doJSON(ctx, http.MethodPost, r.collectionURL(), payload)
	if err != nil {
		return zero, err
	}
	if status < 200 || status >= 300 {
		return zero, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}

	return r.mapping.Added(unwrapItem(body))
}

// Update applies a partial patch; fields absent from the patch keep their
// prior value because the mapping only serializes present keys.
func (r *Repository[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T

	payload, err := r.mapping.UpdatePayload(patch)
	if err != nil {
		return zero, err
	}

	body, status, err := r.doJSON(ctx, http.MethodPut, r.entityURL(id), payload)
	if err != nil {
		return zero, err
	}
	if status < 200 || status >= 300 {
		return zero, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}

	return r.mapping.Updated(unwrapItem(body))
}

// Delete removes an entity and returns its last-known state as echoed by the
// server. A nonexistent id surfaces as the backend's error, unmodified.
func (r *Repository[T, P]) Delete(ctx context.Context, id string) (T, error) {
	var zero T

	body, status, err := r.doRequest(ctx, http.MethodDelete, r.entityURL(id), nil)
	if err != nil {
		return zero, err
	}
	if status < 200 || status >= 300 {
		return zero, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}

	return r.mapping.Deleted(unwrapItem(body))
}

func (r *Repository[T, P]) collectionURL() string {
	return r.apiURL + "/" + r.resource
}

func (r *Repository[T, P]) entityURL(id string) string {
	return r.apiURL + "/" + r.resource + "/" + url.PathEscape(id)
}

// doRequest performs one HTTP request, attaching the bearer token when the
// auth holder has one cached.
func (r *Repository[T, P]) doRequest(ctx context.Context, method, rawURL string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != nil {
		if tok := r.token.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	r.logger.Debug("request complete", "method", method, "status", resp.StatusCode)
	return data, resp.StatusCode, nil
}

func (r *Repository[T, P]) doJSON(ctx context.Context, method, rawURL string, payload any) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return r.doRequest(ctx, method, rawURL, bytes.NewReader(encoded))
}

// buildQuery translates contract pagination and filters into Strapi query
// parameters: {$eq} -> filters[f][$eq], {$in} -> filters[f][$in][i].
func buildQuery(page, pageSize int, filters repositories.SearchParams) url.Values {
	query := url.Values{}
	query.Set("pagination[page]", strconv.Itoa(page))
	query.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	query.Set("populate", "*")

	for field, cond := range filters {
		if len(cond.In) > 0 {
			for i, v := range cond.In {
				query.Set(fmt.Sprintf("filters[%s][$in][%d]", field, i), v)
			}
			continue
		}
		query.Set(fmt.Sprintf("filters[%s][$eq]", field), cond.Eq)
	}
	return query
}

// unwrapItem strips the {"data": ...} envelope when present; flat responses
// pass through untouched.
func unwrapItem(body []byte) []byte {
	var envelope itemEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return envelope.Data
	}
	return body
}

func rawItems(items []json.RawMessage) [][]byte {
	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = []byte(item)
	}
	return out
}
