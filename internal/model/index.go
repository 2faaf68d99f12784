package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const indexFilename = "cache.json"

// Entry is one persisted cache record: model key -> local artifact.
type Entry struct {
	File       string    `json:"file"` // filename inside the cache dir, or absolute path for custom models
	SHA256     string    `json:"sha256"`
	Size       int64     `json:"size"`
	VerifiedAt time.Time `json:"verified_at"`
	Custom     bool      `json:"custom,omitempty"`
}

// index is the on-disk cache index. Callers hold the registry lock while
// touching it.
type index struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

func newIndex() *index {
	return &index{Version: 1, Entries: make(map[string]Entry)}
}

// loadIndex reads the index from dir, returning an empty index when the file
// does not exist yet.
func loadIndex(dir string) (*index, error) {
	path := filepath.Join(dir, indexFilename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newIndex(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("model: reading index: %w", err)
	}

	idx := newIndex()
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("model: parsing index %s: %w", path, err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]Entry)
	}
	return idx, nil
}

// save writes the index atomically (temp file + rename) so readers never
// observe a partially written index.
func (idx *index) save(dir string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("model: encoding index: %w", err)
	}

	path := filepath.Join(dir, indexFilename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("model: writing index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("model: publishing index: %w", err)
	}
	return nil
}
