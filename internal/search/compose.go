package search

import (
	"net/url"
	"strconv"

	"github.com/yiblet/spares/internal/suggest"
)

// Display caps per section.
const (
	MaxSuggestions = 8
	MaxRecent      = 5
	MaxPopular     = 5
)

// Section identifies where a displayed entry came from.
type Section int

const (
	SectionSuggestions Section = iota
	SectionRecent
	SectionPopular
)

func (s Section) String() string {
	switch s {
	case SectionSuggestions:
		return "suggestions"
	case SectionRecent:
		return "recent"
	case SectionPopular:
		return "popular"
	}
	return "unknown"
}

// Title is the heading shown above a section.
func (s Section) Title() string {
	switch s {
	case SectionSuggestions:
		return "Suggestions"
	case SectionRecent:
		return "Recent searches"
	case SectionPopular:
		return "Popular searches"
	}
	return ""
}

// Entry is one row of the composed list.
type Entry struct {
	// Key is unique within a View and stable across recompositions of the
	// same data.
	Key     string
	Section Section
	Label   string

	// Suggestion is set for SectionSuggestions entries.
	Suggestion *suggest.Suggestion

	// Segments is Label split around the query for highlighting.
	Segments []Segment
}

// IsSuggestion reports whether committing the entry opens a product.
func (e Entry) IsSuggestion() bool {
	return e.Suggestion != nil
}

// Route is the storefront path committing the entry navigates to.
func (e Entry) Route(category string) string {
	if e.Suggestion != nil {
		return e.Suggestion.Route()
	}
	return SearchRoute(e.Label, category)
}

// Inputs is everything the composer reads.
type Inputs struct {
	Query       string
	Suggestions []suggest.Suggestion
	Recent      []string
	Popular     []string

	// Loading is true while a lookup for Query is in flight.
	Loading bool

	// MinLength defaults to DefaultMinLength.
	MinLength int
}

// View is the composed, ordered display list.
type View struct {
	Entries []Entry

	// NoResults is set when a long enough query has no suggestions and
	// nothing is loading.
	NoResults bool
}

// Len is the number of navigable entries.
func (v View) Len() int {
	return len(v.Entries)
}

// At returns entry i, or false when i is out of range.
func (v View) At(i int) (Entry, bool) {
	if i < 0 || i >= len(v.Entries) {
		return Entry{}, false
	}
	return v.Entries[i], true
}

// Compose builds the display list. A short query shows recent searches then
// popular searches; a long enough query shows suggestions only.
func Compose(in Inputs) View {
	minLength := in.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	keys := newKeySet()
	var view View

	if QueryLength(in.Query) < minLength {
		for _, r := range capStrings(in.Recent, MaxRecent) {
			view.Entries = append(view.Entries, Entry{
				Key:      keys.claim(SectionRecent.String() + ":" + r),
				Section:  SectionRecent,
				Label:    r,
				Segments: Highlight(r, in.Query),
			})
		}
		for _, p := range capStrings(in.Popular, MaxPopular) {
			view.Entries = append(view.Entries, Entry{
				Key:      keys.claim(SectionPopular.String() + ":" + p),
				Section:  SectionPopular,
				Label:    p,
				Segments: Highlight(p, in.Query),
			})
		}
		return view
	}

	suggestions := in.Suggestions
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	for i := range suggestions {
		s := suggestions[i]
		view.Entries = append(view.Entries, Entry{
			Key:        keys.claim(s.Key()),
			Section:    SectionSuggestions,
			Label:      s.Label,
			Suggestion: &s,
			Segments:   Highlight(s.Label, in.Query),
		})
	}
	view.NoResults = len(view.Entries) == 0 && !in.Loading
	return view
}

// SearchRoute is the path for a free-text search submission.
func SearchRoute(query, category string) string {
	route := "/search?q=" + url.QueryEscape(query)
	if category != "" {
		route += "&category=" + url.QueryEscape(category)
	}
	return route
}

// keySet hands out unique keys, suffixing repeats with an ordinal.
type keySet map[string]int

func newKeySet() keySet {
	return make(keySet)
}

func (k keySet) claim(key string) string {
	n := k[key]
	k[key] = n + 1
	if n == 0 {
		return key
	}
	return key + "#" + strconv.Itoa(n)
}

func capStrings(values []string, limit int) []string {
	out := make([]string, 0, min(len(values), limit))
	for _, v := range values {
		if len(out) == limit {
			break
		}
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
