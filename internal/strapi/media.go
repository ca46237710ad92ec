package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// Media implements [repositories.Uploader] over the Strapi media library.
// Uploads require a valid bearer token, which is why the factory demands an
// [auth.TokenProvider] before constructing this service.
type Media struct {
	httpClient *http.Client
	uploadURL  string
	token      auth.TokenProvider
}

// NewMedia creates the media upload service. uploadURL is the full upload
// endpoint, e.g. "http://host/api/upload".
func NewMedia(client *http.Client, uploadURL string, token auth.TokenProvider) *Media {
	if client == nil {
		client = http.DefaultClient
	}
	return &Media{httpClient: client, uploadURL: uploadURL, token: token}
}

// Upload sends one blob as multipart form data and returns the media library
// ids of the stored files, ready to be linked from an image patch.
func (m *Media) Upload(ctx context.Context, filename string, blob io.Reader) ([]string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, blob); err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if tok := m.token.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var uploaded []struct {
		ID json.Number `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	ids := make([]string, 0, len(uploaded))
	for _, f := range uploaded {
		ids = append(ids, f.ID.String())
	}
	return ids, nil
}
