package tui

import (
	"slices"
	"time"

	"github.com/yiblet/spares/internal/search"
	"github.com/yiblet/spares/internal/suggest"
)

// SearchMsg represents messages that the search component handles
type SearchMsg interface {
	isSearchMsg()
}

// debounceMsg fires when a query's quiet period ends.
type debounceMsg struct {
	Token uint64
	Query string
}

func (debounceMsg) isSearchMsg() {}

// suggestionsMsg carries the outcome of one lookup.
type suggestionsMsg struct {
	Seq    uint64
	Query  string
	Result suggest.Result
	Err    error
}

func (suggestionsMsg) isSearchMsg() {}

// popularMsg carries a popular-only refresh.
type popularMsg struct {
	Popular []string
	Err     error
}

func (popularMsg) isSearchMsg() {}

// popularTickMsg schedules the next popular refresh.
type popularTickMsg struct{}

func (popularTickMsg) isSearchMsg() {}

// SearchModel holds the search engine state behind the input box.
type SearchModel struct {
	Debouncer *search.Debouncer
	Tracker   *suggest.Tracker
	Nav       search.Navigator

	Query       string
	Suggestions []suggest.Suggestion
	Popular     []string
	Recent      []string
	Loading     bool

	View search.View
}

// NewSearchModel creates a search model with the given timing.
func NewSearchModel(debounce time.Duration, minLength int) SearchModel {
	s := SearchModel{
		Debouncer: search.NewDebouncer(debounce, minLength),
		Tracker:   &suggest.Tracker{},
		Nav:       search.NewNavigator(),
	}
	s.recompose()
	return s
}

// SetQuery records a new input value. It reports the debounce token to wait
// on, or ok=false when the query is too short and suggestions were cleared.
func (s *SearchModel) SetQuery(query string) (token uint64, ok bool) {
	s.Query = query
	s.Nav.Open()

	token, ok = s.Debouncer.Change(query)
	if !ok {
		s.Tracker.Invalidate()
		s.Suggestions = nil
		s.Loading = false
	}
	s.recompose()
	return token, ok
}

// Begin issues a sequence number for a lookup that is about to start.
func (s *SearchModel) Begin() uint64 {
	s.Loading = true
	s.recompose()
	return s.Tracker.Next()
}

// SetRecent replaces the recent searches.
func (s *SearchModel) SetRecent(recent []string) {
	s.Recent = recent
	s.recompose()
}

// Selected returns the highlighted entry.
func (s *SearchModel) Selected() (search.Entry, bool) {
	return s.View.At(s.Nav.Index())
}

// Teardown stops the debouncer and makes every in-flight lookup stale.
func (s *SearchModel) Teardown() {
	s.Debouncer.Stop()
	s.Tracker.Close()
	s.Nav.Close()
	s.Loading = false
}

// Update applies lookup results. It returns true when a message was applied
// and false when it was stale.
func (s *SearchModel) Update(msg SearchMsg) bool {
	switch m := msg.(type) {
	case suggestionsMsg:
		if !s.Tracker.Current(m.Seq) {
			return false
		}
		s.Loading = false
		if m.Err == nil {
			s.Suggestions = m.Result.Suggestions
			if m.Result.Popular != nil {
				s.Popular = m.Result.Popular
			}
		}
		s.recompose()
		return true
	case popularMsg:
		if s.Tracker.Closed() || m.Err != nil {
			return false
		}
		s.Popular = m.Popular
		s.recompose()
		return true
	}
	return false
}

// recompose rebuilds the display list. The selection is cleared only when
// the set of displayed entries changes.
func (s *SearchModel) recompose() {
	next := search.Compose(search.Inputs{
		Query:       s.Query,
		Suggestions: s.Suggestions,
		Recent:      s.Recent,
		Popular:     s.Popular,
		Loading:     s.Loading,
		MinLength:   s.Debouncer.MinLength(),
	})

	if !sameKeys(s.View.Entries, next.Entries) {
		s.Nav.Reset(next.Len())
	}
	s.View = next
}

func sameKeys(a, b []search.Entry) bool {
	return slices.EqualFunc(a, b, func(x, y search.Entry) bool {
		return x.Key == y.Key
	})
}
