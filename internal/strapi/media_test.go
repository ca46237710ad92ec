package strapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rafamp34/soundstream/internal/shared"
)

func TestMediaUpload(t *testing.T) {
	t.Run("Uploads Multipart File", func(t *testing.T) {
		var gotAuth, gotContentType, gotFilename string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")

			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("failed to parse multipart body: %v", err)
			}
			files := r.MultipartForm.File["files"]
			if len(files) != 1 {
				t.Fatalf("expected 1 file part, got %d", len(files))
			}
			gotFilename = files[0].Filename

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id": 42}, {"id": 43}]`))
		}))
		defer srv.Close()

		media := NewMedia(srv.Client(), srv.URL+"/api/upload", staticToken("test-jwt"))
		ids, err := media.Upload(context.Background(), "avatar.jpg", strings.NewReader("image-bytes"))

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(ids) != 2 || ids[0] != "42" || ids[1] != "43" {
			t.Errorf("unexpected ids %v", ids)
		}
		if gotAuth != "Bearer test-jwt" {
			t.Errorf("expected bearer header, got %q", gotAuth)
		}
		if !strings.HasPrefix(gotContentType, "multipart/form-data") {
			t.Errorf("expected multipart content type, got %q", gotContentType)
		}
		if gotFilename != "avatar.jpg" {
			t.Errorf("expected filename to survive, got %q", gotFilename)
		}
	})

	t.Run("Omits Authorization Without Token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				t.Errorf("expected no auth header, got %q", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		media := NewMedia(srv.Client(), srv.URL+"/api/upload", staticToken(""))
		ids, err := media.Upload(context.Background(), "cover.png", strings.NewReader("x"))

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected no ids, got %v", ids)
		}
	})

	t.Run("Non-2xx Is API Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		media := NewMedia(srv.Client(), srv.URL+"/api/upload", staticToken("test-jwt"))
		_, err := media.Upload(context.Background(), "cover.png", strings.NewReader("x"))

		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Malformed Response Is Decode Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not": "an array"}`))
		}))
		defer srv.Close()

		media := NewMedia(srv.Client(), srv.URL+"/api/upload", staticToken("test-jwt"))
		_, err := media.Upload(context.Background(), "cover.png", strings.NewReader("x"))

		if err == nil {
			t.Fatal("expected decode error")
		}
		if !strings.Contains(err.Error(), "failed to decode response") {
			t.Errorf("unexpected error %v", err)
		}
	})
}
