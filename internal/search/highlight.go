package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment is a run of a label, either matching the query or not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits label around every case-insensitive occurrence of query.
// Joining the segments' Text gives back label exactly. A blank query yields
// one non-matching segment; an empty label yields none.
func Highlight(label, query string) []Segment {
	if label == "" {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []Segment{{Text: label}}
	}

	needle := []rune(query)
	var segments []Segment
	start := 0 // byte offset of the current unmatched run

	for i := 0; i < len(label); {
		if end, ok := matchAt(label, i, needle); ok {
			if start < i {
				segments = append(segments, Segment{Text: label[start:i]})
			}
			segments = append(segments, Segment{Text: label[i:end], Match: true})
			i = end
			start = end
			continue
		}
		_, size := utf8.DecodeRuneInString(label[i:])
		i += size
	}

	if start < len(label) {
		segments = append(segments, Segment{Text: label[start:]})
	}
	return segments
}

// Matches reports whether label contains query, ignoring case.
func Matches(label, query string) bool {
	for _, seg := range Highlight(label, query) {
		if seg.Match {
			return true
		}
	}
	return false
}

// matchAt compares needle against s starting at byte offset i, rune by rune
// with simple case folding, and returns the byte offset just past the match.
func matchAt(s string, i int, needle []rune) (int, bool) {
	for _, want := range needle {
		if i >= len(s) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(s[i:])
		if !equalFold(got, want) {
			return 0, false
		}
		i += size
	}
	return i, true
}

func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	return unicode.ToLower(a) == unicode.ToLower(b) || unicode.ToUpper(a) == unicode.ToUpper(b)
}
