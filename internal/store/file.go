package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps each document in its own JSON file under a state
// directory. Writes go through a temp file and rename so a crash never
// leaves a half-written document behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	// Keys are internal document names, but keep path traversal out anyway.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, safe+".json")
}
