package memstore

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/yiblet/spares/internal/store"
)

// TestMemoryStore_Basic tests basic store creation and interface compliance.
func TestMemoryStore_Basic(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	var _ store.Store = s

	if s.State() == nil {
		t.Fatal("State() returned nil")
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

// TestKVStore_GetSet tests storing and replacing values.
func TestKVStore_GetSet(t *testing.T) {
	kv := NewMemoryStore().State()

	if _, err := kv.Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := kv.Set("k", "v1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	value, err := kv.Get("k")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if value != "v2" {
		t.Errorf("Get() = %q, want %q", value, "v2")
	}
}

// TestKVStore_EntriesReturnCopies verifies Entries results cannot mutate the store.
func TestKVStore_EntriesReturnCopies(t *testing.T) {
	kv := NewMemoryStore().State()
	kv.Set("k", "v")

	entries, err := kv.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	entries[0].Value = "mutated"

	value, _ := kv.Get("k")
	if value != "v" {
		t.Errorf("store mutated through Entries result: %q", value)
	}
}

// TestKVStore_Entries verifies entries are sorted by key.
func TestKVStore_Entries(t *testing.T) {
	kv := NewMemoryStore().State()
	kv.Set("b", "2")
	kv.Set("a", "1")
	kv.Set("c", "3")

	entries, err := kv.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Entries() returned %d entries, want 3", len(entries))
	}
	for i, key := range []string{"a", "b", "c"} {
		if entries[i].Key != key {
			t.Errorf("entries[%d].Key = %q, want %q", i, entries[i].Key, key)
		}
		if entries[i].UpdatedAt.IsZero() {
			t.Errorf("entries[%d].UpdatedAt is zero", i)
		}
	}
}

// TestKVStore_Delete tests deleting keys.
func TestKVStore_Delete(t *testing.T) {
	kv := NewMemoryStore().State()
	kv.Set("k", "v")

	if err := kv.Delete("k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := kv.Get("k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := kv.Delete("k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

// TestKVStore_Concurrent exercises the mutex under parallel writers.
func TestKVStore_Concurrent(t *testing.T) {
	kv := NewMemoryStore().State()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n)
			if err := kv.Set(key, "v"); err != nil {
				t.Errorf("Set(%s) error: %v", key, err)
			}
			if _, err := kv.Get(key); err != nil {
				t.Errorf("Get(%s) error: %v", key, err)
			}
		}(i)
	}
	wg.Wait()

	entries, _ := kv.Entries()
	if len(entries) != 20 {
		t.Errorf("expected 20 keys, got %d", len(entries))
	}
}
