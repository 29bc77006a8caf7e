package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	th "github.com/desertthunder/epx/internal/testing"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("NewFileStore rejects empty path", func(t *testing.T) {
		if _, err := NewFileStore("  "); err == nil {
			t.Error("expected error for empty path")
		}
	})

	t.Run("Load on missing file returns empty token", func(t *testing.T) {
		store, _ := NewFileStore(filepath.Join(t.TempDir(), "token.json"))

		token, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "" {
			t.Errorf("expected empty token, got %q", token)
		}
	})

	t.Run("Save then Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "token.json")
		store, _ := NewFileStore(path)

		if err := store.Save(ctx, "rt-1"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		token, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if token != "rt-1" {
			t.Errorf("expected rt-1, got %q", token)
		}

		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), `"refresh_token":"rt-1"`) {
			t.Errorf("unexpected file contents %q", string(data))
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600, got %04o", info.Mode().Perm())
		}
	})

	t.Run("Save overwrites and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		store, _ := NewFileStore(filepath.Join(dir, "token.json"))

		_ = store.Save(ctx, "old")
		if err := store.Save(ctx, "new"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		token, _ := store.Load(ctx)
		if token != "new" {
			t.Errorf("expected new, got %q", token)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected only the token file, got %d entries", len(entries))
		}
	})

	t.Run("Save rejects empty token", func(t *testing.T) {
		store, _ := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
		if err := store.Save(ctx, ""); err == nil {
			t.Error("expected error for empty token")
		}
	})

	t.Run("Load on corrupt file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		store, _ := NewFileStore(path)

		if _, err := store.Load(ctx); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		store, _ := NewFileStore(path)
		_ = store.Save(ctx, "rt")

		if err := store.Delete(ctx); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		th.AssertFileNotExists(t, path)
		if err := store.Delete(ctx); err != nil {
			t.Errorf("second delete should be a no-op, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		store, _ := NewFileStore(filepath.Join(t.TempDir(), "token.json"))

		if _, err := store.Load(cctx); err == nil {
			t.Error("expected context error from Load")
		}
		if err := store.Save(cctx, "rt"); err == nil {
			t.Error("expected context error from Save")
		}
	})
}
