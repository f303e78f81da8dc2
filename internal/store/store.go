// Package store defines the storage interfaces for spares' durable client state.
// Client state is a flat key-value namespace, the terminal equivalent of the
// browser storage the storefront uses for things like recent searches.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// KVStore manages durable key-value pairs.
// Values are opaque strings; callers own their encoding.
type KVStore interface {
	// Get retrieves a value by key.
	// Returns an error wrapping ErrNotFound if the key does not exist.
	Get(key string) (string, error)

	// Set stores a value.
	// If the key already exists, its value is replaced.
	Set(key, value string) error

	// Entries returns all pairs with their last update time, ordered by key.
	Entries() ([]*Entry, error)

	// Delete removes a key.
	// Returns an error wrapping ErrNotFound if the key does not exist.
	Delete(key string) error

	// Close releases any resources.
	Close() error
}

// Entry is a single stored key-value pair.
type Entry struct {
	// Key is the unique name of the value.
	Key string

	// Value is the stored payload.
	Value string

	// UpdatedAt is the time of the last Set for this key.
	UpdatedAt time.Time
}

// Store bundles the client-state store and manages its lifecycle.
type Store interface {
	// State returns the key-value store holding client state.
	State() KVStore

	// Close releases all resources.
	Close() error
}
