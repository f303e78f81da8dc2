package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/spares/internal/search"
)

var (
	borderColor   = lipgloss.Color("62")
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))
	matchStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	flashStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// PanelProps is what the suggestion panel renders.
type PanelProps struct {
	View     search.View
	Index    int
	Query    string
	Loading  bool
	Spinner  string
	Width    int
	MaxLines int
}

// PanelView renders the suggestion panel as a pure function
func PanelView(p PanelProps) string {
	width := max(p.Width, 20)
	inner := width - 4 // border and padding

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width - 2)

	var lines []string
	switch {
	case p.View.Len() == 0 && p.Loading:
		lines = append(lines, mutedStyle.Render(p.Spinner+" Searching…"))
	case p.View.NoResults:
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("No results for %q", strings.TrimSpace(p.Query))))
	case p.View.Len() == 0:
		lines = append(lines, mutedStyle.Render("Start typing to search parts"))
	}

	var section search.Section = -1
	for i, entry := range p.View.Entries {
		if entry.Section != section {
			section = entry.Section
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, headerStyle.Render(section.Title()))
		}
		lines = append(lines, renderEntry(entry, i == p.Index, inner))
	}

	if p.MaxLines > 0 && len(lines) > p.MaxLines {
		lines = scrollWindow(lines, p.View, p.Index, p.MaxLines)
	}

	return style.Render(strings.Join(lines, "\n"))
}

// renderEntry draws one row with the matched runs highlighted.
func renderEntry(entry search.Entry, selected bool, width int) string {
	badge := ""
	if entry.Suggestion != nil {
		badge = " " + string(entry.Suggestion.MatchType)
	}
	avail := max(width-2-lipgloss.Width(badge), 4)

	var b strings.Builder
	used := 0
	for _, seg := range entry.Segments {
		text := seg.Text
		if used+lipgloss.Width(text) > avail {
			text = truncateToWidth(text, avail-used-1) + "…"
		}
		used += lipgloss.Width(text)
		if seg.Match && !selected {
			b.WriteString(matchStyle.Render(text))
		} else {
			b.WriteString(text)
		}
		if used >= avail {
			break
		}
	}

	line := "  " + b.String()
	if selected {
		line = "> " + b.String()
	}
	if badge != "" {
		if selected {
			line += badge
		} else {
			line += badgeStyle.Render(badge)
		}
	}

	if selected {
		return selectedStyle.Width(width).Render(line)
	}
	return line
}

// scrollWindow keeps the selected row visible when the panel is taller than
// the terminal allows.
func scrollWindow(lines []string, view search.View, index, maxLines int) []string {
	if index < 0 {
		return lines[:maxLines]
	}

	// Row of the selected entry: one header per section, plus spacers.
	row := 0
	var section search.Section = -1
	for i, entry := range view.Entries {
		if entry.Section != section {
			if i > 0 {
				row++
			}
			row++
			section = entry.Section
		}
		if i == index {
			break
		}
		row++
	}

	start := max(0, row-maxLines+1)
	end := min(len(lines), start+maxLines)
	return lines[start:end]
}

// truncateToWidth cuts s to at most width terminal cells.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String()
}
