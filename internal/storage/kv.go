// Package storage provides the key-value persistence layer: a small
// get/set interface over named string blobs, with file-backed and
// SQLite-backed implementations, plus the snapshot store that serializes
// the incident and reminder collections on top of it.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// KeyValueStore is the persistence collaborator: named string blobs with
// get/set semantics. Get reports absence separately from failure so that
// callers can distinguish "first run" from "store broken".
type KeyValueStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// fileKVStore stores each key as a file under a base directory. Keys must
// be plain identifiers (no path separators).
type fileKVStore struct {
	basePath string
}

// NewFileKVStore creates a KeyValueStore that keeps one file per key in
// the given directory.
func NewFileKVStore(basePath string) KeyValueStore {
	return &fileKVStore{basePath: basePath}
}

func (s *fileKVStore) keyPath(key string) string {
	return filepath.Join(s.basePath, key+".yaml")
}

func (s *fileKVStore) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *fileKVStore) Set(key, value string) error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("writing key %s: creating directory: %w", key, err)
	}
	if err := os.WriteFile(s.keyPath(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}
