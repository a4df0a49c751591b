package repository

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/reshetovitsme/relaywatch/internal/modules/watchlist/domain"
	"github.com/samber/oops"
)

const storeFile = "monitor_list.json"

// FileStorage keeps the store as one JSON document, rewritten on every save.
// Callers serialize access.
type FileStorage struct {
	path string
}

// NewFileStorage creates the file-backed repository under basePath
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create storage directory").Wrap(err)
	}
	return &FileStorage{path: filepath.Join(basePath, storeFile)}, nil
}

// Path is the backing file
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Load() (domain.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, oops.With("path", s.path, "context", "failed to read watch list").Wrap(err)
	}

	var store domain.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, oops.With("path", s.path, "context", "failed to parse watch list").Wrap(err)
	}
	if store == nil {
		store = domain.Store{}
	}
	return store, nil
}

func (s *FileStorage) Save(store domain.Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return oops.With("context", "failed to marshal watch list").Wrap(err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return oops.With("path", s.path, "context", "failed to write watch list").Wrap(err)
	}
	return nil
}
