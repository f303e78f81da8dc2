package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/spares/internal/catalog"
	"github.com/yiblet/spares/internal/search"
)

// BrowseModel is the catalog browser: a filter box over brands and their
// models.
type BrowseModel struct {
	Width  int
	Height int
	Input  textinput.Model
	Brands []catalog.Brand
	Cursor int

	// Selected is set when the user commits a brand or model.
	Selected *Selection

	category string
	memo     catalog.Memo[catalog.Brand]
}

// NewBrowseModel creates a browser over brands.
func NewBrowseModel(brands []catalog.Brand, category, query string) *BrowseModel {
	input := textinput.New()
	input.Prompt = "filter> "
	input.Placeholder = "brand or model"
	input.Focus()
	input.SetValue(query)
	input.CursorEnd()

	return &BrowseModel{
		Width:    80,
		Height:   24,
		Input:    input,
		Brands:   brands,
		category: category,
	}
}

// Visible returns the brands matching the current filter.
func (b *BrowseModel) Visible() []catalog.Brand {
	return b.memo.Filter(b.Brands, b.Input.Value())
}

// Computations reports how often the filter actually ran.
func (b *BrowseModel) Computations() int {
	return b.memo.Computations()
}

func (b *BrowseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (b *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		b.Width = max(m.Width, 30)
		b.Height = m.Height
		return b, nil
	case tea.KeyMsg:
		switch m.String() {
		case "ctrl+c", "esc":
			return b, tea.Quit
		case "down":
			b.Cursor = min(b.Cursor+1, len(b.Visible())-1)
			b.Cursor = max(b.Cursor, 0)
			return b, nil
		case "up":
			b.Cursor = max(b.Cursor-1, 0)
			return b, nil
		case "enter":
			visible := b.Visible()
			if b.Cursor >= len(visible) {
				return b, nil
			}
			b.Selected = b.selection(visible[b.Cursor])
			return b, tea.Quit
		}

		before := b.Input.Value()
		var cmd tea.Cmd
		b.Input, cmd = b.Input.Update(m)
		if b.Input.Value() != before {
			b.Cursor = 0
		}
		return b, cmd
	}

	var cmd tea.Cmd
	b.Input, cmd = b.Input.Update(msg)
	return b, cmd
}

// selection commits a brand, or the single model that matches the filter
// when exactly one does.
func (b *BrowseModel) selection(brand catalog.Brand) *Selection {
	query := brand.Name
	if models := matchingModels(brand, b.Input.Value()); len(models) == 1 {
		query = brand.Name + " " + models[0].Name
	}
	return &Selection{
		Kind:     SelectSearch,
		Label:    query,
		Query:    query,
		Category: b.category,
		Route:    search.SearchRoute(query, b.category),
	}
}

func (b *BrowseModel) View() string {
	return BrowseView(b)
}

// BrowseView renders the browser.
func BrowseView(b *BrowseModel) string {
	visible := b.Visible()
	query := b.Input.Value()

	var lines []string
	lines = append(lines, b.Input.View(), "")

	if len(visible) == 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("No brands or models match %q", strings.TrimSpace(query))))
	}

	for i, brand := range visible {
		name := renderSegments(search.Highlight(brand.Name, query), i == b.Cursor)
		line := fmt.Sprintf("%s (%d models)", name, len(brand.Models))
		if i == b.Cursor {
			line = selectedStyle.Width(b.Width - 2).Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)

		models := matchingModels(brand, query)
		if len(models) == 0 && i == b.Cursor {
			models = brand.Models
		}
		for _, m := range models {
			lines = append(lines, "    "+renderSegments(search.Highlight(m.Name, query), false))
		}
	}

	if b.Height > 4 && len(lines) > b.Height-2 {
		lines = lines[:b.Height-2]
	}

	status := fmt.Sprintf("%d of %d brands • ↑/↓ move • enter search • esc quit", len(visible), len(b.Brands))
	lines = append(lines, "", lipgloss.NewStyle().Width(b.Width).Inherit(mutedStyle).Render(status))
	return strings.Join(lines, "\n")
}

// matchingModels returns the brand's models whose names contain query.
// A blank query matches none so the list stays compact.
func matchingModels(brand catalog.Brand, query string) []catalog.Model {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	var out []catalog.Model
	for _, m := range brand.Models {
		if search.Matches(m.Name, query) {
			out = append(out, m)
		}
	}
	return out
}

func renderSegments(segments []search.Segment, plain bool) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Match && !plain {
			b.WriteString(matchStyle.Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
