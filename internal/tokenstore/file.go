package tokenstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

// FileStore keeps one file per key under a directory, mode 0600.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created
// lazily on the first Set.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	// Keys are fixed identifiers, not user input, but keep them from
	// escaping the store directory anyway.
	return filepath.Join(s.dir, strings.ReplaceAll(key, string(filepath.Separator), "_"))
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", pkgerrors.ErrStorage, key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", pkgerrors.ErrStorage, s.dir, err)
	}
	if err := os.WriteFile(s.path(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", pkgerrors.ErrStorage, key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: delete %s: %v", pkgerrors.ErrStorage, key, err)
	}
	return nil
}
