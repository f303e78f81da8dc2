package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
}

// NewModalModel creates a new modal model
func NewModalModel() ModalModel {
	return ModalModel{Width: 50}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ModalView renders the modal centered in the window, replacing the
// background view.
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	modalWidth := min(model.Width, max(windowWidth-4, 10))
	textWidth := modalWidth - 4

	var parts []string
	parts = append(parts, lipgloss.NewStyle().Bold(true).Render(model.Title))
	if model.Content != "" {
		parts = append(parts, strings.Join(WrapText(model.Content, textWidth), "\n"))
	}
	if model.Options != "" {
		parts = append(parts, mutedStyle.Render(model.Options))
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(modalWidth).
		Align(lipgloss.Center).
		Render(strings.Join(parts, "\n\n"))

	height := max(windowHeight, lipgloss.Height(backgroundView))
	return lipgloss.Place(windowWidth, height, lipgloss.Center, lipgloss.Center, modal)
}

// ShowClearHistoryConfirmation creates the confirmation for Ctrl+X.
func ShowClearHistoryConfirmation(count int) ShowModalMsg {
	noun := "searches"
	if count == 1 {
		noun = "search"
	}
	return ShowModalMsg{
		Title:   "Clear recent searches?",
		Content: fmt.Sprintf("This removes %d recent %s from this device.", count, noun),
		Options: "[Y] Yes, clear    [N] No, keep",
	}
}
