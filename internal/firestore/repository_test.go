package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

const testParent = "projects/demo/databases/(default)/documents"

// songDoc builds a stored song document body.
func songDoc(id, name, author, duration string) map[string]any {
	return map[string]any{
		"name": testParent + "/songs/" + id,
		"fields": map[string]any{
			"name":     map[string]any{"stringValue": name},
			"author":   map[string]any{"stringValue": author},
			"duration": map[string]any{"stringValue": duration},
		},
	}
}

func queryResult(docs ...map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(docs)+1)
	for _, doc := range docs {
		out = append(out, map[string]any{"document": doc, "readTime": "2024-01-01T00:00:00Z"})
	}
	// trailing entry with no document, as the live endpoint sends
	out = append(out, map[string]any{"readTime": "2024-01-01T00:00:00Z"})
	return out
}

func newSongRepo(t *testing.T, handler http.HandlerFunc) *Repository[models.Song, models.SongPatch] {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(ClientOpts{
		Client:    srv.Client(),
		ProjectID: "demo",
		BaseURL:   srv.URL,
		Token:     staticToken("test-id-token"),
	})
	return NewRepository(client, "songs", NewSongMapping(client.Parent()), QueryHints{})
}

func newPlaylistRepo(t *testing.T, handler http.HandlerFunc) *Repository[models.Playlist, models.PlaylistPatch] {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(ClientOpts{
		Client:    srv.Client(),
		ProjectID: "demo",
		BaseURL:   srv.URL,
	})
	hints := QueryHints{
		Fields: map[string]string{"user": "users_IDS"},
		Array:  map[string]bool{"users_IDS": true},
	}
	return NewRepository(client, "playlists", NewPlaylistMapping(client.Parent()), hints)
}

func TestRepositoryGetAll(t *testing.T) {
	t.Run("Translates Equality Filter To Structured Query", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&gotBody)
			if r.Header.Get("Authorization") != "Bearer test-id-token" {
				t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
			}
			json.NewEncoder(w).Encode(queryResult(songDoc("s1", "Imagine", "John Lennon", "3:03")))
		})

		page, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"name": repositories.Eq("Imagine"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.HasSuffix(gotPath, ":runQuery") {
			t.Errorf("expected a runQuery request, got %q", gotPath)
		}
		structured, _ := gotBody["structuredQuery"].(map[string]any)
		where, _ := structured["where"].(map[string]any)
		filter, _ := where["fieldFilter"].(map[string]any)
		if filter == nil {
			t.Fatalf("expected a single fieldFilter, got %v", gotBody)
		}
		if op := filter["op"]; op != "EQUAL" {
			t.Errorf("expected EQUAL op, got %v", op)
		}

		if page.Page != 1 || page.Pages != 1 {
			t.Errorf("unexpected envelope: %+v", page)
		}
		if len(page.Items) != 1 || page.Items[0].Name != "Imagine" {
			t.Fatalf("unexpected items: %+v", page.Items)
		}
		if page.Items[0].ID != "s1" {
			t.Errorf("expected id from resource path, got %q", page.Items[0].ID)
		}
	})

	t.Run("Returns Everything As One Page", func(t *testing.T) {
		docs := make([]map[string]any, 30)
		for i := range docs {
			docs[i] = songDoc(fmt.Sprintf("s%d", i), fmt.Sprintf("Track %d", i), "Various", "2:00")
		}
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(queryResult(docs...))
		})

		page, err := repo.GetAll(context.Background(), 1, 25, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(page.Items) != 30 {
			t.Fatalf("expected every match, got %d items", len(page.Items))
		}
		if page.Pages != 1 {
			t.Errorf("expected pages=1, got %d", page.Pages)
		}
		if len(page.Items) > page.PageSize {
			t.Errorf("page overflows its size: %d items, size %d", len(page.Items), page.PageSize)
		}
	})

	t.Run("Inclusion Filter Becomes IN", func(t *testing.T) {
		var gotBody map[string]any
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(queryResult())
		})

		_, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"author": repositories.In("Lennon", "McCartney"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		structured, _ := gotBody["structuredQuery"].(map[string]any)
		where, _ := structured["where"].(map[string]any)
		filter, _ := where["fieldFilter"].(map[string]any)
		if filter == nil || filter["op"] != "IN" {
			t.Fatalf("expected IN filter, got %v", gotBody)
		}
		value, _ := filter["value"].(map[string]any)
		array, _ := value["arrayValue"].(map[string]any)
		values, _ := array["values"].([]any)
		if len(values) != 2 {
			t.Errorf("expected two IN terms, got %v", value)
		}
	})

	t.Run("Membership Hint Becomes ArrayContains", func(t *testing.T) {
		var gotBody map[string]any
		repo := newPlaylistRepo(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(queryResult())
		})

		_, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"user": repositories.Eq("uid-42"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		structured, _ := gotBody["structuredQuery"].(map[string]any)
		where, _ := structured["where"].(map[string]any)
		filter, _ := where["fieldFilter"].(map[string]any)
		if filter == nil || filter["op"] != "ARRAY_CONTAINS" {
			t.Fatalf("expected ARRAY_CONTAINS, got %v", gotBody)
		}
		field, _ := filter["field"].(map[string]any)
		if field["fieldPath"] != "users_IDS" {
			t.Errorf("expected hint-mapped field, got %v", field)
		}
	})

	t.Run("Reference Fields Filter By Path", func(t *testing.T) {
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(queryResult())
		}))
		t.Cleanup(srv.Close)

		client := NewClient(ClientOpts{Client: srv.Client(), ProjectID: "demo", BaseURL: srv.URL})
		hints := QueryHints{
			Array: map[string]bool{"playlistid_IDS": true},
			Refs:  map[string]string{"playlistid_IDS": "playlists"},
		}
		repo := NewRepository(client, "songs", NewSongMapping(client.Parent()), hints)

		_, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"playlistid_IDS": repositories.Eq("p1"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		structured, _ := gotBody["structuredQuery"].(map[string]any)
		where, _ := structured["where"].(map[string]any)
		filter, _ := where["fieldFilter"].(map[string]any)
		if filter == nil || filter["op"] != "ARRAY_CONTAINS" {
			t.Fatalf("expected ARRAY_CONTAINS, got %v", gotBody)
		}
		value, _ := filter["value"].(map[string]any)
		if ref, _ := value["referenceValue"].(string); !strings.HasSuffix(ref, "/playlists/p1") {
			t.Errorf("expected a reference path, got %v", value)
		}
	})

	t.Run("Multiple Filters Compose With AND", func(t *testing.T) {
		var gotBody map[string]any
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotBody)
			json.NewEncoder(w).Encode(queryResult())
		})

		_, err := repo.GetAll(context.Background(), 1, 25, repositories.SearchParams{
			"name":   repositories.Eq("Imagine"),
			"author": repositories.Eq("John Lennon"),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		structured, _ := gotBody["structuredQuery"].(map[string]any)
		where, _ := structured["where"].(map[string]any)
		composite, _ := where["compositeFilter"].(map[string]any)
		if composite == nil || composite["op"] != "AND" {
			t.Fatalf("expected AND composite, got %v", gotBody)
		}
		if filters, _ := composite["filters"].([]any); len(filters) != 2 {
			t.Errorf("expected two constraints, got %v", composite)
		}
	})
}

func TestRepositoryGetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/songs/s1") {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			json.NewEncoder(w).Encode(songDoc("s1", "Imagine", "John Lennon", "3:03"))
		})

		song, err := repo.GetByID(context.Background(), "s1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song == nil || song.Name != "Imagine" {
			t.Fatalf("unexpected song: %+v", song)
		}
	})

	t.Run("Missing Is Nil Not Error", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		song, err := repo.GetByID(context.Background(), "nope")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song != nil {
			t.Errorf("expected nil for a missing document, got %+v", song)
		}
	})
}

func TestRepositoryAdd(t *testing.T) {
	t.Run("Stores And Returns Assigned ID", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			var doc Document
			json.NewDecoder(r.Body).Decode(&doc)
			if doc.Fields["name"].AsString() != "Let It Be" {
				t.Errorf("unexpected payload: %+v", doc.Fields)
			}
			doc.Name = testParent + "/songs/generated-id"
			json.NewEncoder(w).Encode(doc)
		})

		song, err := repo.Add(context.Background(), models.Song{Name: "Let It Be", Author: "The Beatles", Duration: "4:03"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song.ID != "generated-id" {
			t.Errorf("expected server-assigned id, got %q", song.ID)
		}
	})

	t.Run("Rejects Missing Required Fields", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should reach the backend")
		})

		if _, err := repo.Add(context.Background(), models.Song{Name: "No Author"}); err == nil {
			t.Error("expected a validation error")
		}
	})
}

func TestRepositoryUpdate(t *testing.T) {
	t.Run("Masks Exactly The Patched Fields", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch {
				t.Errorf("expected PATCH, got %s", r.Method)
			}
			mask := r.URL.Query()["updateMask.fieldPaths"]
			if len(mask) != 1 || mask[0] != "name" {
				t.Errorf("expected mask for name only, got %v", mask)
			}
			if r.URL.Query().Get("currentDocument.exists") != "true" {
				t.Error("expected existence precondition")
			}
			json.NewEncoder(w).Encode(songDoc("s1", "Renamed", "John Lennon", "3:03"))
		})

		song, err := repo.Update(context.Background(), "s1", models.SongPatch{Name: models.Ptr("Renamed")})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song.Name != "Renamed" || song.Author != "John Lennon" {
			t.Errorf("unexpected song: %+v", song)
		}
	})

	t.Run("Missing Document Is An Error", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			// failed existence precondition
			w.WriteHeader(http.StatusConflict)
		})

		if _, err := repo.Update(context.Background(), "nope", models.SongPatch{Name: models.Ptr("x")}); err == nil {
			t.Error("expected an error for a missing document")
		}
	})
}

func TestRepositoryDelete(t *testing.T) {
	t.Run("Returns Prior State", func(t *testing.T) {
		var deleted bool
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				json.NewEncoder(w).Encode(songDoc("s1", "Imagine", "John Lennon", "3:03"))
			case http.MethodDelete:
				deleted = true
				w.Write([]byte("{}"))
			default:
				t.Errorf("unexpected method %s", r.Method)
			}
		})

		song, err := repo.Delete(context.Background(), "s1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !deleted {
			t.Error("expected a DELETE request")
		}
		if song.Name != "Imagine" {
			t.Errorf("expected the removed song back, got %+v", song)
		}
	})

	t.Run("Missing Document Is An Error", func(t *testing.T) {
		repo := newSongRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		if _, err := repo.Delete(context.Background(), "nope"); err == nil {
			t.Error("expected an error for a missing document")
		}
	})
}
