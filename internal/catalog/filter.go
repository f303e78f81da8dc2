package catalog

import (
	"strings"
)

// Item is anything with a name and optional named sub-items.
type Item interface {
	ItemName() string
	SubItemNames() []string
}

// Filter returns the items whose own name, or any sub-item's name, contains
// query case-insensitively. A blank query returns items itself.
func Filter[T Item](items []T, query string) []T {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item Item, needle string) bool {
	if strings.Contains(strings.ToLower(item.ItemName()), needle) {
		return true
	}
	for _, name := range item.SubItemNames() {
		if strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

// Memo caches the last Filter result and recomputes only when the source
// slice or the query changes. The zero value is ready to use.
type Memo[T Item] struct {
	src      []T
	query    string
	out      []T
	valid    bool
	computed int
}

// Filter returns the filtered view of items for query.
func (m *Memo[T]) Filter(items []T, query string) []T {
	if m.valid && m.query == query && sameSlice(m.src, items) {
		return m.out
	}

	m.src = items
	m.query = query
	m.out = Filter(items, query)
	m.valid = true
	m.computed++
	return m.out
}

// Computations reports how many times the filter actually ran.
func (m *Memo[T]) Computations() int {
	return m.computed
}

// sameSlice reports whether a and b share backing array, length and capacity.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
