package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rafamp34/soundstream/internal/formatter"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/shared"
)

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		playlistCount  int
		validateResult func(t *testing.T, result *formatter.BulkExportResult, tempDir string)
	}{
		{
			name:          "single playlist json export",
			format:        "json",
			playlistCount: 1,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, tempDir string) {
				if len(result.Results[0].Files) != 1 {
					t.Errorf("expected 1 file, got %d", len(result.Results[0].Files))
				}
				jsonPath := filepath.Join(tempDir, "playlist1.json")
				if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
					t.Errorf("JSON file not created at %s", jsonPath)
				}
			},
		},
		{
			name:          "multiple playlists csv export",
			format:        "csv",
			playlistCount: 3,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, tempDir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export should create 2 files, got %d", len(res.Files))
					}
				}
			},
		},
		{
			name:          "text export",
			format:        "txt",
			playlistCount: 2,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, tempDir string) {
				for _, res := range result.Results {
					if len(res.Files) != 1 {
						t.Errorf("text export should create 1 file, got %d", len(res.Files))
					}
				}
			},
		},
		{
			name:          "markdown export",
			format:        "markdown",
			playlistCount: 1,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, tempDir string) {
				if len(result.Results[0].Files) < 1 {
					t.Errorf("markdown export should create at least 1 file, got %d", len(result.Results[0].Files))
				}
				readme := filepath.Join(tempDir, "playlist1", "README.md")
				if _, err := os.Stat(readme); os.IsNotExist(err) {
					t.Errorf("README not created at %s", readme)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()

			src, ids := newMockSource(tt.playlistCount)
			engine := NewExportEngine(src)

			progressCh := make(chan ProgressUpdate, 100)
			go func() {
				for range progressCh {
				}
			}()

			opts := BulkExportOpts{
				Format:     tt.format,
				OutputDir:  tempDir,
				NumWorkers: 2,
				RateLimit:  50.0,
			}

			result, err := engine.BulkExport(context.Background(), progressCh, ids, opts)
			close(progressCh)

			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}

			if result.TotalPlaylists != tt.playlistCount {
				t.Errorf("TotalPlaylists = %d, want %d", result.TotalPlaylists, tt.playlistCount)
			}
			if result.SuccessfulExports != tt.playlistCount {
				t.Errorf("SuccessfulExports = %d, want %d", result.SuccessfulExports, tt.playlistCount)
			}
			if result.FailedExports != 0 {
				t.Errorf("FailedExports = %d, want 0", result.FailedExports)
			}
			if result.OutputDirectory != tempDir {
				t.Errorf("OutputDirectory = %s, want %s", result.OutputDirectory, tempDir)
			}

			if result.ManifestPath == "" {
				t.Error("ManifestPath should not be empty")
			}

			manifestPath := filepath.Join(tempDir, "export_manifest.json")
			manifestData, err := os.ReadFile(manifestPath)
			if err != nil {
				t.Fatalf("failed to read manifest: %v", err)
			}

			var manifest formatter.ExportManifest
			if err := json.Unmarshal(manifestData, &manifest); err != nil {
				t.Fatalf("failed to parse manifest: %v", err)
			}

			if manifest.Format != tt.format {
				t.Errorf("manifest format = %s, want %s", manifest.Format, tt.format)
			}
			if manifest.TotalPlaylists != tt.playlistCount {
				t.Errorf("manifest total = %d, want %d", manifest.TotalPlaylists, tt.playlistCount)
			}

			if tt.validateResult != nil {
				tt.validateResult(t, result, tempDir)
			}
		})
	}
}

func TestBulkExport_PartialFailures(t *testing.T) {
	tempDir := t.TempDir()

	src, _ := newMockSource(1)
	src.playlists["playlist3"] = models.Playlist{
		ID: "playlist3", Name: "Playlist 3", UserIDs: []string{"user1"},
	}

	engine := NewExportEngine(src)
	progressCh := make(chan ProgressUpdate, 100)
	go func() {
		for range progressCh {
		}
	}()

	playlistIDs := []string{"playlist1", "playlist2", "playlist3"}
	opts := BulkExportOpts{
		Format:     "json",
		OutputDir:  tempDir,
		NumWorkers: 2,
		RateLimit:  50.0,
	}

	result, err := engine.BulkExport(context.Background(), progressCh, playlistIDs, opts)
	close(progressCh)

	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}

	if result.TotalPlaylists != 3 {
		t.Errorf("TotalPlaylists = %d, want 3", result.TotalPlaylists)
	}
	if result.SuccessfulExports != 2 {
		t.Errorf("SuccessfulExports = %d, want 2", result.SuccessfulExports)
	}
	if result.FailedExports != 1 {
		t.Errorf("FailedExports = %d, want 1", result.FailedExports)
	}

	var failedResult *formatter.PlaylistExportResult
	for i := range result.Results {
		if !result.Results[i].Success {
			failedResult = &result.Results[i]
			break
		}
	}

	if failedResult == nil {
		t.Fatal("expected one failed result")
	}
	if failedResult.PlaylistID != "playlist2" {
		t.Errorf("failed playlist ID = %s, want playlist2", failedResult.PlaylistID)
	}
	if failedResult.Error == nil {
		t.Error("failed result should have an error")
	}
}

func TestBulkExport_NilSource(t *testing.T) {
	engine := NewExportEngine(nil)
	progressCh := make(chan ProgressUpdate, 10)

	opts := BulkExportOpts{
		Format:    "json",
		OutputDir: t.TempDir(),
	}

	_, err := engine.BulkExport(context.Background(), progressCh, []string{"p1"}, opts)
	close(progressCh)

	if err == nil {
		t.Fatal("BulkExport() expected error for nil source")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("error should mention source not initialized, got: %v", err)
	}
}

func TestBulkExport_ContextCancellation(t *testing.T) {
	tempDir := t.TempDir()

	src, ids := newMockSource(5)
	engine := NewExportEngine(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.BulkExport(ctx, nil, ids, BulkExportOpts{
		Format:     "json",
		OutputDir:  tempDir,
		NumWorkers: 2,
		RateLimit:  50.0,
	})

	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	if result.SuccessfulExports != 0 {
		t.Errorf("SuccessfulExports = %d, want 0 after cancellation", result.SuccessfulExports)
	}
}

func TestExportAll(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		tempDir := t.TempDir()

		src, ids := newMockSource(2)
		for _, id := range ids {
			src.userPlaylists["user1"] = append(src.userPlaylists["user1"], src.playlists[id])
		}
		engine := NewExportEngine(src)

		result, err := engine.ExportAll(context.Background(), nil, "user1", BulkExportOpts{
			Format:    "json",
			OutputDir: tempDir,
			RateLimit: 50.0,
		})
		if err != nil {
			t.Fatalf("ExportAll() error = %v", err)
		}

		if result.SuccessfulExports != 2 {
			t.Errorf("SuccessfulExports = %d, want 2", result.SuccessfulExports)
		}
	})

	t.Run("NoPlaylists", func(t *testing.T) {
		src, _ := newMockSource(1)
		engine := NewExportEngine(src)

		_, err := engine.ExportAll(context.Background(), nil, "nobody", BulkExportOpts{
			OutputDir: t.TempDir(),
		})
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("ExportAll() error = %v, want ErrPlaylistNotFound", err)
		}
	})

	t.Run("ListError", func(t *testing.T) {
		src, _ := newMockSource(1)
		src.listErr = fmt.Errorf("backend unreachable")
		engine := NewExportEngine(src)

		_, err := engine.ExportAll(context.Background(), nil, "user1", BulkExportOpts{
			OutputDir: t.TempDir(),
		})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("ExportAll() error = %v, want ErrAPIRequest", err)
		}
	})
}
