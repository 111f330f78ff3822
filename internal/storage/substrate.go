package storage

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/lepinkainen/reelbox/internal/cache"
)

// Substrate is a persistent string key/value store.
type Substrate interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Clear() error
	Keys() ([]string, error)
}

// SQLiteSubstrate stores entries in the local_storage table of the cache database.
type SQLiteSubstrate struct {
	db *cache.CacheDB
}

// NewSQLiteSubstrate wraps an open cache database.
func NewSQLiteSubstrate(db *cache.CacheDB) *SQLiteSubstrate {
	return &SQLiteSubstrate{db: db}
}

func (s *SQLiteSubstrate) GetItem(key string) (string, bool, error) {
	return s.db.Lookup(cache.LocalStorageTable, key)
}

func (s *SQLiteSubstrate) SetItem(key, value string) error {
	return s.db.Set(cache.LocalStorageTable, key, value)
}

func (s *SQLiteSubstrate) RemoveItem(key string) error {
	return s.db.Delete(cache.LocalStorageTable, key)
}

func (s *SQLiteSubstrate) Clear() error {
	if _, err := s.db.InvalidateSource(cache.LocalStorageTable); err != nil {
		return fmt.Errorf("failed to clear local storage: %w", err)
	}
	return nil
}

func (s *SQLiteSubstrate) Keys() ([]string, error) {
	return s.db.Keys(cache.LocalStorageTable)
}

// MemorySubstrate keeps entries in memory for the lifetime of the process.
type MemorySubstrate struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemorySubstrate returns an empty in-memory substrate.
func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{items: make(map[string]string)}
}

func (m *MemorySubstrate) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemorySubstrate) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemorySubstrate) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemorySubstrate) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.items)
	return nil
}

func (m *MemorySubstrate) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items)), nil
}
