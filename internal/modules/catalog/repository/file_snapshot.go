package repository

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/samber/oops"
)

const snapshotFile = "game_list.json"

// FileSnapshot stores the catalog as a single JSON object of name to id
type FileSnapshot struct {
	path string
	mu   sync.Mutex
}

// NewFileSnapshot creates the snapshot store under basePath
func NewFileSnapshot(basePath string) (*FileSnapshot, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create storage directory").Wrap(err)
	}
	return &FileSnapshot{path: filepath.Join(basePath, snapshotFile)}, nil
}

// Load reads the snapshot. Older snapshots stored ids as numbers; both forms are accepted.
func (s *FileSnapshot) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, oops.With("path", s.path, "context", "failed to read catalog snapshot").Wrap(err)
	}

	var raw map[string]flexID
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, oops.With("path", s.path, "context", "failed to parse catalog snapshot").Wrap(err)
	}

	byName := make(map[string]string, len(raw))
	for name, id := range raw {
		byName[name] = string(id)
	}
	return byName, nil
}

// Save rewrites the snapshot
func (s *FileSnapshot) Save(byName map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(byName, "", "  ")
	if err != nil {
		return oops.With("context", "failed to marshal catalog snapshot").Wrap(err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// flexID decodes a JSON string or number into its string form
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}
