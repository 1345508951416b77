package workspace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileStorage stores each key as a JSON file under a directory.
// Paths are derived from a hash of the key so arbitrary keys map to safe
// file names, spread over two-character subdirectories.
type FileStorage struct {
	dir string
}

// NewFileStorage creates file storage rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStorage{dir: dir}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dir returns the storage root.
func (s *FileStorage) Dir() string { return s.dir }

// Get reads the blob for key. A corrupt entry is removed and reported
// as missing.
func (s *FileStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set writes the blob atomically by renaming a temp file into place.
func (s *FileStorage) Set(ctx context.Context, key string, data []byte) error {
	raw, err := json.Marshal(fileEntry{Key: key, Data: data, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Remove deletes the file for key.
func (s *FileStorage) Remove(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for file storage.
func (s *FileStorage) Close() error { return nil }

func (s *FileStorage) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileStorage implements Storage.
var _ Storage = (*FileStorage)(nil)
