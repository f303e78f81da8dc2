// Package history keeps the user's recent searches in durable client storage.
//
// The list lives under a single key as a JSON array of strings, newest first,
// capped at MaxEntries. Anything stored there that does not parse is treated
// as an empty history.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yiblet/spares/internal/logger"
	"github.com/yiblet/spares/internal/store"
)

const (
	// StorageKey is the client-state key holding the JSON array.
	StorageKey = "recent_searches"

	// MaxEntries caps the persisted list.
	MaxEntries = 10

	// DisplayLimit is how many recent searches the panel shows.
	DisplayLimit = 5

	// MinQueryLength is the shortest query worth remembering.
	MinQueryLength = 2

	// maxEntryLength bounds a single stored query.
	maxEntryLength = 120
)

// Store records, lists and clears recent searches.
type Store struct {
	kv  store.KVStore
	log *slog.Logger
}

// New creates a history store on top of kv.
func New(kv store.KVStore, log *slog.Logger) *Store {
	return &Store{
		kv:  kv,
		log: logger.Component(log, "history"),
	}
}

// Record adds query to the front of the list. Empty or too-short queries are
// ignored. An existing entry that matches case-insensitively is replaced, so
// the most recent casing wins.
func (s *Store) Record(query string) error {
	query = Truncate(Sanitize(query), maxEntryLength)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}

	current := s.load()

	next := make([]string, 0, MaxEntries)
	next = append(next, query)
	for _, existing := range current {
		if strings.EqualFold(existing, query) {
			continue
		}
		next = append(next, existing)
		if len(next) == MaxEntries {
			break
		}
	}

	return s.save(next)
}

// List returns up to limit entries, newest first. A limit of 0 or less
// returns everything.
func (s *Store) List(limit int) []string {
	entries := s.load()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Clear empties the persisted list.
func (s *Store) Clear() error {
	if err := s.kv.Delete(StorageKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	return nil
}

// UpdatedAt reports when the list was last written. ok is false when
// nothing is stored.
func (s *Store) UpdatedAt() (t time.Time, ok bool) {
	entries, err := s.kv.Entries()
	if err != nil {
		s.log.Warn("failed to read client state", "error", err)
		return time.Time{}, false
	}
	for _, e := range entries {
		if e.Key == StorageKey {
			return e.UpdatedAt, true
		}
	}
	return time.Time{}, false
}

// load reads the persisted list, dropping anything that violates the list's
// invariants. It never fails: unreadable state is an empty history.
func (s *Store) load() []string {
	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("failed to read recent searches", "error", err)
		}
		return []string{}
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Debug("discarding unparsable recent searches", "error", err)
		return []string{}
	}

	entries := make([]string, 0, len(stored))
	for _, entry := range stored {
		entry = Sanitize(entry)
		if utf8.RuneCountInString(entry) < MinQueryLength || containsFold(entries, entry) {
			continue
		}
		entries = append(entries, entry)
		if len(entries) == MaxEntries {
			break
		}
	}
	return entries
}

func (s *Store) save(entries []string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode recent searches: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist recent searches: %w", err)
	}
	return nil
}

func containsFold(entries []string, s string) bool {
	for _, e := range entries {
		if strings.EqualFold(e, s) {
			return true
		}
	}
	return false
}
