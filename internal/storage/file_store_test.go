package storage

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newStore(t *testing.T) (FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalFileStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store, dir
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{50, 50, 50, 255})
		}
	}
	return img
}

func TestSaveTemp(t *testing.T) {
	store, dir := newStore(t)

	path, err := store.SaveTemp([]byte("payload"))
	if err != nil {
		t.Fatalf("SaveTemp failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("temp file %s not in upload dir %s", path, dir)
	}
	if !strings.HasPrefix(filepath.Base(path), "temp_image_") {
		t.Errorf("temp file name missing prefix: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("temp file content = %q, want %q", data, "payload")
	}
}

func TestSaveTemp_UniqueNames(t *testing.T) {
	store, _ := newStore(t)

	first, _ := store.SaveTemp([]byte("a"))
	second, _ := store.SaveTemp([]byte("b"))
	if first == second {
		t.Errorf("expected unique temp names, both were %s", first)
	}
}

func TestSaveProcessedAndResolve(t *testing.T) {
	store, _ := newStore(t)

	path, id, err := store.SaveProcessed(testImage())
	if err != nil {
		t.Fatalf("SaveProcessed failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "processed_") {
		t.Errorf("processed file name missing prefix: %s", path)
	}

	resolved, err := store.ResolveProcessed(id)
	if err != nil {
		t.Fatalf("ResolveProcessed failed: %v", err)
	}
	if resolved != path {
		t.Errorf("ResolveProcessed = %s, want %s", resolved, path)
	}
}

func TestResolveProcessed_RejectsNonUUID(t *testing.T) {
	store, _ := newStore(t)

	for _, id := range []string{"../../etc/passwd", "not-a-uuid", ""} {
		if _, err := store.ResolveProcessed(id); !errors.Is(err, ErrImageNotFound) {
			t.Errorf("ResolveProcessed(%q) error = %v, want ErrImageNotFound", id, err)
		}
	}
}

func TestResolveProcessed_MissingFile(t *testing.T) {
	store, _ := newStore(t)

	if _, err := store.ResolveProcessed("8e7b9a40-733f-4f59-a6bc-0f4be22ad3a1"); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound for unknown id, got %v", err)
	}
}

func TestLatestProcessed(t *testing.T) {
	store, dir := newStore(t)

	if _, err := store.LatestProcessed(); !errors.Is(err, ErrNoProcessedImage) {
		t.Fatalf("expected ErrNoProcessedImage on empty dir, got %v", err)
	}

	older, _, err := store.SaveProcessed(testImage())
	if err != nil {
		t.Fatalf("SaveProcessed failed: %v", err)
	}
	newer, _, err := store.SaveProcessed(testImage())
	if err != nil {
		t.Fatalf("SaveProcessed failed: %v", err)
	}

	// Push the second file's mtime clearly past the first.
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(newer, future, future); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}

	latest, err := store.LatestProcessed()
	if err != nil {
		t.Fatalf("LatestProcessed failed: %v", err)
	}
	if latest != newer {
		t.Errorf("LatestProcessed = %s, want %s (older was %s)", latest, newer, older)
	}

	// A temp file must never win
	if _, err := store.SaveTemp([]byte("x")); err != nil {
		t.Fatalf("SaveTemp failed: %v", err)
	}
	latest, err = store.LatestProcessed()
	if err != nil {
		t.Fatalf("LatestProcessed failed: %v", err)
	}
	if filepath.Dir(latest) != dir || !strings.HasPrefix(filepath.Base(latest), "processed_") {
		t.Errorf("LatestProcessed returned a non-processed file: %s", latest)
	}
}

func TestRemove_RefusesOutsideUploadDir(t *testing.T) {
	store, _ := newStore(t)

	outside := filepath.Join(t.TempDir(), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := store.Remove(outside); err == nil {
		t.Error("expected Remove to refuse a path outside the upload dir")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("outside file should still exist: %v", err)
	}
}

func TestSweepTemp(t *testing.T) {
	store, dir := newStore(t)

	stale, err := store.SaveTemp([]byte("old"))
	if err != nil {
		t.Fatalf("SaveTemp failed: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("failed to age temp file: %v", err)
	}

	fresh, err := store.SaveTemp([]byte("new"))
	if err != nil {
		t.Fatalf("SaveTemp failed: %v", err)
	}
	processed, _, err := store.SaveProcessed(testImage())
	if err != nil {
		t.Fatalf("SaveProcessed failed: %v", err)
	}
	if err := os.Chtimes(processed, past, past); err != nil {
		t.Fatalf("failed to age processed file: %v", err)
	}

	removed, err := store.SweepTemp(time.Hour)
	if err != nil {
		t.Fatalf("SweepTemp failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 file swept, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh temp file should survive the sweep")
	}
	if _, err := os.Stat(processed); err != nil {
		t.Error("processed files must never be swept")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected 2 surviving files, got %d", len(entries))
	}
}
