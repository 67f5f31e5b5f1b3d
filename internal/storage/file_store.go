package storage

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"urbanfix-backend/internal/logger"

	"github.com/google/uuid"
)

var (
	// ErrNoProcessedImage indicates no annotated image exists in the upload directory
	ErrNoProcessedImage = errors.New("no processed image found")

	// ErrImageNotFound indicates the requested image id does not resolve to a file
	ErrImageNotFound = errors.New("image not found")
)

const (
	tempPrefix      = "temp_image_"
	processedPrefix = "processed_"
)

// FileStore manages temporary uploads and annotated images on local disk.
// Filenames carry a fresh uuid so concurrent requests never collide.
type FileStore interface {
	// SaveTemp persists raw upload bytes and returns the file path
	SaveTemp(data []byte) (string, error)

	// SaveProcessed encodes the annotated raster as JPEG and returns its path and image id
	SaveProcessed(img image.Image) (path string, imageID string, err error)

	// Remove deletes a file previously written by this store
	Remove(path string) error

	// ResolveProcessed maps an image id from a /detect response back to its file path
	ResolveProcessed(imageID string) (string, error)

	// LatestProcessed returns the most recently modified processed image
	LatestProcessed() (string, error)

	// SweepTemp removes temp files older than maxAge and reports how many were deleted
	SweepTemp(maxAge time.Duration) (int, error)
}

type localFileStore struct {
	dir string
}

// NewLocalFileStore creates a FileStore rooted at dir, creating it if needed
func NewLocalFileStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &localFileStore{dir: dir}, nil
}

func (s *localFileStore) SaveTemp(data []byte) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s%s.jpg", tempPrefix, uuid.New().String()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}
	logger.WithField("path", path).Debug("Saved temporary image")
	return path, nil
}

func (s *localFileStore) SaveProcessed(img image.Image) (string, string, error) {
	id := uuid.New().String()
	path := filepath.Join(s.dir, fmt.Sprintf("%s%s.jpg", processedPrefix, id))

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create processed image: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to encode processed image: %w", err)
	}
	return path, id, nil
}

func (s *localFileStore) Remove(path string) error {
	// Refuse paths outside the upload directory
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return fmt.Errorf("path %s is outside the upload directory", path)
	}
	return os.Remove(path)
}

func (s *localFileStore) ResolveProcessed(imageID string) (string, error) {
	// The id is a uuid minted by SaveProcessed; reject anything else so a
	// crafted id cannot escape the upload directory.
	if _, err := uuid.Parse(imageID); err != nil {
		return "", ErrImageNotFound
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s%s.jpg", processedPrefix, imageID))
	if _, err := os.Stat(path); err != nil {
		return "", ErrImageNotFound
	}
	return path, nil
}

func (s *localFileStore) LatestProcessed() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read upload directory: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !isProcessedImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = entry.Name()
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", ErrNoProcessedImage
	}
	return filepath.Join(s.dir, latest), nil
}

func (s *localFileStore) SweepTemp(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to remove stale temp file")
				continue
			}
			removed++
		}
	}
	return removed, nil
}

func isProcessedImage(name string) bool {
	if !strings.HasPrefix(name, processedPrefix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
