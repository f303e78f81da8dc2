// Package memstore provides an in-memory implementation of the store interfaces.
// This implementation is designed for fast unit testing and does not persist data.
package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yiblet/spares/internal/store"
)

// MemoryStore is an in-memory implementation of store.Store.
// It is thread-safe via a mutex.
// Data exists only for the lifetime of the process.
type MemoryStore struct {
	state *memoryKVStore
}

// NewMemoryStore creates a new in-memory store for testing.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: newMemoryKVStore(),
	}
}

// State returns the client-state store.
func (m *MemoryStore) State() store.KVStore {
	return m.state
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// memoryKVStore implements store.KVStore using an in-memory map.
type memoryKVStore struct {
	mu      sync.RWMutex
	entries map[string]*store.Entry
	now     func() time.Time
}

// newMemoryKVStore creates a new in-memory key-value store.
func newMemoryKVStore() *memoryKVStore {
	return &memoryKVStore{
		entries: make(map[string]*store.Entry),
		now:     time.Now,
	}
}

// Get retrieves a value by key.
func (m *memoryKVStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}

	return entry.Value, nil
}

// Set stores a value, replacing any previous one.
func (m *memoryKVStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &store.Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: m.now(),
	}
	return nil
}

// Entries returns copies of all entries sorted by key.
func (m *memoryKVStore) Entries() ([]*store.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*store.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		copied := *e
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result, nil
}

// Delete removes a key.
func (m *memoryKVStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}

	delete(m.entries, key)
	return nil
}

// Close releases resources (no-op for memory store).
func (m *memoryKVStore) Close() error {
	return nil
}
