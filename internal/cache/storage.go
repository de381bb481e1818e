// Package cache repairs and manages the cart and liked lists that the storefront
// keeps in browser storage.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Storage keys.
const (
	KeyLiked         = "liked"
	KeyCart          = "cart"
	KeyLegacyLikes   = "productLikes_v1"
	KeyMigrationFlag = "migration_v2_complete"
	KeySchemaVersion = "schema_version"
	KeyUserID        = "userId"
)

// Storage is a string key/value store with localStorage semantics.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns a MemoryStorage seeded with a copy of items.
func NewMemoryStorage(items map[string]string) *MemoryStorage {
	m := &MemoryStorage{items: make(map[string]string, len(items))}
	for k, v := range items {
		m.items[k] = v
	}
	return m
}

func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Snapshot returns a copy of every stored key.
func (m *MemoryStorage) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.items))
	for k, v := range m.items {
		out[k] = v
	}
	return out
}

// FileStorage is a Storage persisted as one JSON object of string values, the
// shape produced by exporting a browser's localStorage. Every write rewrites
// the file.
type FileStorage struct {
	path string
	mem  *MemoryStorage
}

// OpenFileStorage loads path. A missing file starts empty.
func OpenFileStorage(path string) (*FileStorage, error) {
	items := map[string]string{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read storage file: %w", err)
	case len(data) > 0:
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse storage file %s: %w", path, err)
		}
	}
	return &FileStorage{path: path, mem: NewMemoryStorage(items)}, nil
}

func (f *FileStorage) GetItem(key string) (string, bool) {
	return f.mem.GetItem(key)
}

func (f *FileStorage) SetItem(key, value string) error {
	_ = f.mem.SetItem(key, value)
	return f.flush()
}

func (f *FileStorage) RemoveItem(key string) error {
	_ = f.mem.RemoveItem(key)
	return f.flush()
}

// Keys returns the stored keys in sorted order.
func (f *FileStorage) Keys() []string {
	snap := f.mem.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *FileStorage) flush() error {
	data, err := json.MarshalIndent(f.mem.Snapshot(), "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write storage file: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}
