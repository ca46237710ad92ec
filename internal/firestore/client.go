package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/shared"
)

const defaultBaseURL = "https://firestore.googleapis.com/v1"

// Client performs document operations against one Firestore database.
// All repositories for this backend share a single client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	parent     string // projects/{pid}/databases/(default)/documents
	token      auth.TokenProvider
	logger     *log.Logger
}

// ClientOpts contains construction options for [Client].
type ClientOpts struct {
	Client    *http.Client
	ProjectID string
	BaseURL   string // overrides the public endpoint, e.g. for an emulator
	Token     auth.TokenProvider
	Logger    *log.Logger
}

// NewClient creates a client for the project's default database.
func NewClient(opts ClientOpts) *Client {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Client{
		httpClient: opts.Client,
		baseURL:    opts.BaseURL,
		parent:     fmt.Sprintf("projects/%s/databases/(default)/documents", opts.ProjectID),
		token:      opts.Token,
		logger:     shared.WithLogger(opts.Logger, "backend", "firebase"),
	}
}

// Parent returns the database's document root path, used by mappings to
// build reference values.
func (c *Client) Parent() string { return c.parent }

// GetDocument fetches one document. found is false for request-level absence.
func (c *Client) GetDocument(ctx context.Context, collection, id string) (doc []byte, found bool, err error) {
	rawURL := c.documentURL(collection, id)
	body, status, err := c.do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNotFound {
		return nil, false, nil
	}
	if status < 200 || status >= 300 {
		return nil, false, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	return body, true, nil
}

// CreateDocument stores a new document with a server-assigned id and returns
// the stored document.
func (c *Client) CreateDocument(ctx context.Context, collection string, doc *Document) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/%s/%s", c.baseURL, c.parent, collection)
	body, status, err := c.doJSON(ctx, http.MethodPost, rawURL, doc)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	return body, nil
}

// SetDocument stores a document under a caller-chosen id, used by the auth
// service to key profiles by uid.
func (c *Client) SetDocument(ctx context.Context, collection, id string, doc *Document) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/%s/%s?documentId=%s", c.baseURL, c.parent, collection, url.QueryEscape(id))
	body, status, err := c.doJSON(ctx, http.MethodPost, rawURL, doc)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	return body, nil
}

// PatchDocument merges the document's fields into the stored document. The
// update mask restricts the write to exactly the named fields, which is what
// gives this backend the same partial-update semantics as the REST one.
func (c *Client) PatchDocument(ctx context.Context, collection, id string, doc *Document, mask []string) ([]byte, error) {
	query := url.Values{}
	for _, path := range mask {
		query.Add("updateMask.fieldPaths", path)
	}
	// precondition: patching a missing document is the backend's error,
	// not an implicit create
	query.Set("currentDocument.exists", "true")
	rawURL := c.documentURL(collection, id) + "?" + query.Encode()

	body, status, err := c.doJSON(ctx, http.MethodPatch, rawURL, doc)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	return body, nil
}

// DeleteDocument removes a document. Firestore's delete returns no body, so
// callers needing the prior state fetch it first.
func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	_, status, err := c.do(ctx, http.MethodDelete, c.documentURL(collection, id), nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
	return nil
}

// queryFilter is one structured-query constraint.
type queryFilter struct {
	Field string
	Op    string // EQUAL, IN, ARRAY_CONTAINS
	Value Value
}

// RunQuery executes a structured query over one collection and returns the
// raw document bodies in result order.
func (c *Client) RunQuery(ctx context.Context, collection string, filters []queryFilter) ([][]byte, error) {
	structured := map[string]any{
		"from": []map[string]any{{"collectionId": collection}},
	}
	if where := buildWhere(filters); where != nil {
		structured["where"] = where
	}

	rawURL := fmt.Sprintf("%s/%s:runQuery", c.baseURL, c.parent)
	body, status, err := c.doJSON(ctx, http.MethodPost, rawURL, map[string]any{"structuredQuery": structured})
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}

	var results []struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode query results: %w", err)
	}

	docs := make([][]byte, 0, len(results))
	for _, r := range results {
		// result entries without a document carry only a readTime
		if len(r.Document) == 0 || string(r.Document) == "null" {
			continue
		}
		docs = append(docs, []byte(r.Document))
	}
	return docs, nil
}

func buildWhere(filters []queryFilter) map[string]any {
	if len(filters) == 0 {
		return nil
	}

	fieldFilters := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		fieldFilters = append(fieldFilters, map[string]any{
			"fieldFilter": map[string]any{
				"field": map[string]any{"fieldPath": f.Field},
				"op":    f.Op,
				"value": f.Value,
			},
		})
	}
	if len(fieldFilters) == 1 {
		return fieldFilters[0]
	}
	return map[string]any{
		"compositeFilter": map[string]any{
			"op":      "AND",
			"filters": fieldFilters,
		},
	}
}

func (c *Client) documentURL(collection, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.parent, collection, url.PathEscape(id))
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request complete", "method", method, "status", resp.StatusCode)
	return data, resp.StatusCode, nil
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload any) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.do(ctx, method, rawURL, bytes.NewReader(encoded))
}
