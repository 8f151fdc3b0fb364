// Package storage manages media files attached to voices. Files live under a
// single root directory and are referenced by relative path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrInvalidPath is returned for paths that escape the media root.
var ErrInvalidPath = errors.New("invalid media path")

// MediaStore stores and deletes media files under a root directory.
type MediaStore struct {
	root string
}

// NewMediaStore creates a MediaStore rooted at dir, creating it if needed.
func NewMediaStore(dir string) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &MediaStore{root: dir}, nil
}

// resolve maps a stored relative path onto the media root, rejecting
// traversal outside it.
func (m *MediaStore) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", ErrInvalidPath
	}
	full := filepath.Join(m.root, filepath.Clean(path))
	if !strings.HasPrefix(full, m.root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

// Save writes data to a relative path under the media root.
func (m *MediaStore) Save(ctx context.Context, path string, data []byte) error {
	full, err := m.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create media subdirectory: %w", err)
	}
	return os.WriteFile(full, data, 0644)
}

// Delete removes a media file. A missing file is not an error; the caller
// treats media release as best-effort.
func (m *MediaStore) Delete(ctx context.Context, path string) error {
	full, err := m.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("media already absent")
			return nil
		}
		return fmt.Errorf("failed to delete media: %w", err)
	}

	return nil
}
