package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// WrapText wraps text to maxWidth terminal cells, breaking on spaces when
// possible. Newlines in the input are kept.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if lipgloss.Width(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}
	return result
}

// wrapLine wraps a single line that is too long
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current strings.Builder
	width := 0

	flush := func() {
		result = append(result, current.String())
		current.Reset()
		width = 0
	}

	for _, word := range strings.Fields(line) {
		wordWidth := lipgloss.Width(word)

		// Words wider than the line are split by cell.
		for wordWidth > maxWidth {
			if width > 0 {
				flush()
			}
			head := truncateToWidth(word, maxWidth)
			result = append(result, head)
			word = word[len(head):]
			wordWidth = lipgloss.Width(word)
		}
		if word == "" {
			continue
		}

		if width > 0 && width+1+wordWidth > maxWidth {
			flush()
		}
		if width > 0 {
			current.WriteByte(' ')
			width++
		}
		current.WriteString(word)
		width += wordWidth
	}

	if width > 0 {
		flush()
	}
	return result
}
