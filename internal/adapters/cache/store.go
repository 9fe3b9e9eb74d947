// Package cache implements the local durable state: a key-value persistence
// capability and the record/catalog tables layered on top of it.
package cache

import (
	"os"
	"path/filepath"
	"strings"
)

// KeyValueStore is the injected persistence capability. Implementations
// return absent (ok=false) for keys they cannot read; they never surface
// corruption to callers of Get.
type KeyValueStore interface {
	// Get returns the bytes stored under key, or ok=false when absent.
	Get(key string) ([]byte, bool)

	// Set durably stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// FileStore implements KeyValueStore with one file per key under a
// directory. Keys are sanitized into file names; a missing or unreadable
// file reads as absent.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get returns the bytes stored under key.
func (s *FileStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set durably stores value under key.
func (s *FileStore) Set(key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a torn value.
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".json")
}

// sanitizeKey maps a logical key to a safe file name.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
