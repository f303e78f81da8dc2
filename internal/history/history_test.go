package history

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/yiblet/spares/internal/logger"
	"github.com/yiblet/spares/internal/store"
	"github.com/yiblet/spares/internal/store/memstore"
)

func newTestStore(t *testing.T) (*Store, store.KVStore) {
	t.Helper()
	kv := memstore.NewMemoryStore().State()
	return New(kv, logger.Nop()), kv
}

func TestRecord_PrependsNewestFirst(t *testing.T) {
	h, _ := newTestStore(t)

	for _, q := range []string{"vivo v21", "samsung a14", "redmi note 12"} {
		if err := h.Record(q); err != nil {
			t.Fatalf("Record(%q) error: %v", q, err)
		}
	}

	got := h.List(0)
	want := []string{"redmi note 12", "samsung a14", "vivo v21"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestRecord_CaseInsensitiveDedupLatestCasingWins(t *testing.T) {
	h, _ := newTestStore(t)

	h.Record("abc")
	h.Record("ABC")

	got := h.List(0)
	if !reflect.DeepEqual(got, []string{"ABC"}) {
		t.Errorf("List() = %v, want [ABC]", got)
	}
}

func TestRecord_DuplicateMovesToFront(t *testing.T) {
	h, _ := newTestStore(t)

	h.Record("battery")
	h.Record("display")
	h.Record("Battery")

	got := h.List(0)
	want := []string{"Battery", "display"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestRecord_IgnoresEmptyAndShort(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace", "   \t "},
		{"single char", "a"},
		{"single char padded", "  a  "},
		{"control chars only", "\n\r\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, kv := newTestStore(t)
			if err := h.Record(tt.query); err != nil {
				t.Fatalf("Record(%q) error: %v", tt.query, err)
			}
			if got := h.List(0); len(got) != 0 {
				t.Errorf("List() = %v, want empty", got)
			}
			if _, err := kv.Get(StorageKey); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected nothing persisted, got err=%v", err)
			}
		})
	}
}

func TestRecord_TrimsAndCollapsesWhitespace(t *testing.T) {
	h, _ := newTestStore(t)

	h.Record("  vivo \n  v21\t")

	got := h.List(0)
	if !reflect.DeepEqual(got, []string{"vivo v21"}) {
		t.Errorf("List() = %v, want [vivo v21]", got)
	}
}

func TestRecord_NeverExceedsMax(t *testing.T) {
	h, _ := newTestStore(t)

	for i := 0; i < 25; i++ {
		if err := h.Record(fmt.Sprintf("query %d", i)); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
		if n := len(h.List(0)); n > MaxEntries {
			t.Fatalf("after %d records history has %d entries", i+1, n)
		}
	}

	got := h.List(0)
	if len(got) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(got))
	}
	if got[0] != "query 24" || got[MaxEntries-1] != "query 15" {
		t.Errorf("unexpected window: first=%q last=%q", got[0], got[MaxEntries-1])
	}
}

func TestList_Limit(t *testing.T) {
	h, _ := newTestStore(t)
	for i := 0; i < 8; i++ {
		h.Record(fmt.Sprintf("part %d", i))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 8},
		{-1, 8},
		{DisplayLimit, 5},
		{20, 8},
	}
	for _, tt := range tests {
		if got := len(h.List(tt.limit)); got != tt.want {
			t.Errorf("List(%d) returned %d entries, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	h, _ := newTestStore(t)
	h.Record("charging port")

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if got := h.List(0); len(got) != 0 {
		t.Errorf("List() after Clear = %v, want empty", got)
	}

	// Clearing an empty history is fine
	if err := h.Clear(); err != nil {
		t.Errorf("second Clear() error: %v", err)
	}
}

func TestLoad_CorruptedStateIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "vivo,samsung"},
		{"truncated", `["vivo", "sams`},
		{"object", `{"q":"vivo"}`},
		{"numbers", `[1,2,3]`},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, kv := newTestStore(t)
			kv.Set(StorageKey, tt.raw)

			if got := h.List(0); len(got) != 0 {
				t.Errorf("List() = %v, want empty", got)
			}

			// Recording over corrupted state replaces it
			if err := h.Record("vivo"); err != nil {
				t.Fatalf("Record() error: %v", err)
			}
			if got := h.List(0); !reflect.DeepEqual(got, []string{"vivo"}) {
				t.Errorf("List() after Record = %v, want [vivo]", got)
			}
		})
	}
}

func TestLoad_RepairsInvariantViolations(t *testing.T) {
	h, kv := newTestStore(t)
	kv.Set(StorageKey, `["vivo", "", "  ", "x", "VIVO", "a1", "b1", "c1", "d1", "e1", "f1", "g1", "h1", "i1", "j1"]`)

	got := h.List(0)
	if len(got) != MaxEntries {
		t.Fatalf("expected %d entries, got %d: %v", MaxEntries, len(got), got)
	}
	if got[0] != "vivo" || got[1] != "a1" {
		t.Errorf("unexpected repaired list: %v", got)
	}
}

type failingKV struct {
	store.KVStore
}

func (failingKV) Get(string) (string, error) { return "", errors.New("disk on fire") }
func (failingKV) Set(string, string) error   { return errors.New("disk on fire") }

func TestRecord_PersistenceFailureIsReturned(t *testing.T) {
	h := New(failingKV{}, logger.Nop())

	if got := h.List(0); len(got) != 0 {
		t.Errorf("List() with failing storage = %v, want empty", got)
	}
	if err := h.Record("vivo"); err == nil {
		t.Error("expected Record to report the storage failure")
	}
}

func TestUpdatedAt(t *testing.T) {
	h, _ := newTestStore(t)

	if _, ok := h.UpdatedAt(); ok {
		t.Error("empty history has no update time")
	}

	before := time.Now()
	h.Record("vivo v21")
	at, ok := h.UpdatedAt()
	if !ok {
		t.Fatal("expected an update time after Record")
	}
	if at.Before(before.Add(-time.Second)) {
		t.Errorf("UpdatedAt() = %v, want at or after %v", at, before)
	}

	h.Clear()
	if _, ok := h.UpdatedAt(); ok {
		t.Error("cleared history has no update time")
	}
}

type brokenEntriesKV struct {
	store.KVStore
}

func (brokenEntriesKV) Entries() ([]*store.Entry, error) { return nil, errors.New("disk on fire") }

func TestUpdatedAt_StorageFailure(t *testing.T) {
	h := New(brokenEntriesKV{memstore.NewMemoryStore().State()}, logger.Nop())
	if _, ok := h.UpdatedAt(); ok {
		t.Error("a storage failure should report no update time")
	}
}
