package strapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newSongServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Repository[models.Song, models.SongPatch]) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	repo := NewRepository(srv.Client(), staticToken("test-jwt"), srv.URL+"/api", "songs", NewSongMapping(), nil)
	return srv, repo
}

func TestRepositoryGetAll(t *testing.T) {
	t.Run("Translates Filters And Unwraps Envelope", func(t *testing.T) {
		var gotQuery map[string][]string
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			if r.Header.Get("Authorization") != "Bearer test-jwt" {
				t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []any{
					map[string]any{"id": 1, "attributes": map[string]any{"name": "Imagine", "author": "John Lennon", "duration": 183}},
				},
				"meta": map[string]any{"pagination": map[string]any{"page": 1, "pageSize": 25, "pageCount": 3, "total": 62}},
			})
		})

		page, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"name": repositories.Eq("Imagine"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := gotQuery["filters[name][$eq]"]; len(got) != 1 || got[0] != "Imagine" {
			t.Errorf("expected equality filter translation, got %v", gotQuery)
		}
		if got := gotQuery["pagination[page]"]; len(got) != 1 || got[0] != "1" {
			t.Errorf("expected page param, got %v", gotQuery)
		}

		if page.Page != 1 || page.Pages != 3 || page.PageSize != 25 {
			t.Errorf("unexpected envelope: %+v", page)
		}
		if len(page.Items) != 1 || page.Items[0].Name != "Imagine" {
			t.Fatalf("unexpected items: %+v", page.Items)
		}
		if page.Items[0].Duration != "3:03" {
			t.Errorf("expected normalized duration 3:03, got %q", page.Items[0].Duration)
		}
		if len(page.Items) > page.PageSize {
			t.Error("page overflows its size")
		}
	})

	t.Run("Inclusion Filter", func(t *testing.T) {
		var gotQuery map[string][]string
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		})

		_, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"author": repositories.In("Lennon", "McCartney"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := gotQuery["filters[author][$in][0]"]; len(got) != 1 || got[0] != "Lennon" {
			t.Errorf("expected $in translation, got %v", gotQuery)
		}
		if got := gotQuery["filters[author][$in][1]"]; len(got) != 1 || got[0] != "McCartney" {
			t.Errorf("expected $in translation, got %v", gotQuery)
		}
	})

	t.Run("Flat Array Response Is A Single Page", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]any{
				map[string]any{"id": 7, "name": "Help", "author": "The Beatles", "duration": 125},
			})
		})

		page, err := repo.GetAll(context.Background(), 1, 25, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Pages != 1 {
			t.Errorf("expected single page, got %d", page.Pages)
		}
		if len(page.Items) != 1 || page.Items[0].Duration != "2:05" {
			t.Fatalf("unexpected items: %+v", page.Items)
		}
	})

	t.Run("Oversized Flat Array Widens Page Size", func(t *testing.T) {
		items := make([]any, 30)
		for i := range items {
			items[i] = map[string]any{"id": i + 1, "name": fmt.Sprintf("Track %d", i), "author": "Various", "duration": 120}
		}
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(items)
		})

		page, err := repo.GetAll(context.Background(), 1, 25, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Items) != 30 {
			t.Fatalf("expected every item, got %d", len(page.Items))
		}
		if page.Pages != 1 {
			t.Errorf("expected pages=1, got %d", page.Pages)
		}
		if len(page.Items) > page.PageSize {
			t.Errorf("page overflows its size: %d items, size %d", len(page.Items), page.PageSize)
		}
	})

	t.Run("Empty Page Count Defaults To One", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		})

		page, err := repo.GetAll(context.Background(), 1, 25, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if page.Pages != 1 {
			t.Errorf("expected pages=1, got %d", page.Pages)
		}
	})
}

func TestRepositoryGetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": 42, "attributes": map[string]any{"name": "Imagine", "author": "John Lennon", "duration": 183}},
			})
		})

		song, err := repo.GetByID(context.Background(), "42")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song == nil || song.ID != "42" {
			t.Fatalf("unexpected song: %+v", song)
		}
	})

	t.Run("Not Found Returns Nil Not Error", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		song, err := repo.GetByID(context.Background(), "999")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song != nil {
			t.Errorf("expected nil, got %+v", song)
		}
	})
}

func TestRepositoryWrites(t *testing.T) {
	t.Run("Add Assigns ID", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var payload struct {
				Data map[string]any `json:"data"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			if payload.Data["name"] != "Imagine" {
				t.Errorf("unexpected create payload: %v", payload.Data)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": 11, "attributes": map[string]any{"name": "Imagine", "author": "John Lennon", "duration": 183}},
			})
		})

		song, err := repo.Add(context.Background(), models.Song{Name: "Imagine", Author: "John Lennon", Duration: "3:03"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song.ID == "" {
			t.Error("expected assigned id")
		}
	})

	t.Run("Add Rejects Missing Required Fields", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be issued")
		})
		if _, err := repo.Add(context.Background(), models.Song{}); err == nil {
			t.Error("expected error for missing name/author")
		}
	})

	t.Run("Update Sends Only Present Fields", func(t *testing.T) {
		var sent map[string]any
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			var payload struct {
				Data map[string]any `json:"data"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			sent = payload.Data
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": 11, "attributes": map[string]any{"name": "Renamed", "author": "John Lennon", "duration": 183}},
			})
		})

		song, err := repo.Update(context.Background(), "11", models.SongPatch{Name: models.Ptr("Renamed")})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(sent) != 1 {
			t.Errorf("expected exactly one patched field, got %v", sent)
		}
		if song.Author != "John Lennon" {
			t.Errorf("unpatched field changed: %+v", song)
		}
	})

	t.Run("Delete Returns Prior State", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", r.Method)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": 11, "attributes": map[string]any{"name": "Imagine", "author": "John Lennon", "duration": 183}},
			})
		})

		song, err := repo.Delete(context.Background(), "11")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song.Name != "Imagine" {
			t.Errorf("expected last-known state, got %+v", song)
		}
	})

	t.Run("Delete Missing ID Surfaces Backend Error", func(t *testing.T) {
		_, repo := newSongServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		if _, err := repo.Delete(context.Background(), "999"); err == nil {
			t.Error("expected error for missing id")
		}
	})
}

func TestRepositoryWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected unauthenticated request, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	repo := NewRepository(srv.Client(), staticToken(""), srv.URL+"/api", "songs", NewSongMapping(), nil)
	if _, err := repo.GetAll(context.Background(), 1, 25, nil); err != nil {
		t.Fatalf("call should proceed unauthenticated, got %v", err)
	}
}
