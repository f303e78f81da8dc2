package store

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// TestInterfaceCompilation verifies that the interfaces compile correctly.
func TestInterfaceCompilation(t *testing.T) {
	var _ KVStore = (*mockKVStore)(nil)
	var _ Store = (*mockStore)(nil)
}

// TestEntryFields verifies Entry has all required fields.
func TestEntryFields(t *testing.T) {
	now := time.Now()
	entry := &Entry{Key: "recent_searches", Value: `["vivo"]`, UpdatedAt: now}

	if entry.Key != "recent_searches" {
		t.Errorf("Key = %s, want recent_searches", entry.Key)
	}
	if entry.Value != `["vivo"]` {
		t.Errorf("Value = %s, want [\"vivo\"]", entry.Value)
	}
	if !entry.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", entry.UpdatedAt, now)
	}
}

// TestErrNotFoundWrapping verifies wrapped not-found errors stay detectable.
func TestErrNotFoundWrapping(t *testing.T) {
	err := fmt.Errorf("%w: %s", ErrNotFound, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
}

// Mock implementations for interface compliance testing

type mockKVStore struct{}

func (m *mockKVStore) Get(key string) (string, error) {
	return "", ErrNotFound
}

func (m *mockKVStore) Set(key, value string) error {
	return nil
}

func (m *mockKVStore) Entries() ([]*Entry, error) {
	return nil, nil
}

func (m *mockKVStore) Delete(key string) error {
	return nil
}

func (m *mockKVStore) Close() error {
	return nil
}

type mockStore struct {
	state *mockKVStore
}

func (m *mockStore) State() KVStore {
	return m.state
}

func (m *mockStore) Close() error {
	return nil
}
