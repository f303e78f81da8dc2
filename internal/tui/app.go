package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/spares/internal/clipboard"
	"github.com/yiblet/spares/internal/history"
	"github.com/yiblet/spares/internal/logger"
	"github.com/yiblet/spares/internal/search"
	"github.com/yiblet/spares/internal/suggest"
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	ConfirmClearMode
)

// AppMsg represents messages that the app component handles
type AppMsg interface {
	isAppMsg()
}

type flashExpiredMsg struct{}

func (flashExpiredMsg) isAppMsg() {}

// Suggester runs lookups against the backend.
type Suggester interface {
	Fetch(ctx context.Context, query, category string) (suggest.Result, error)
	Popular(ctx context.Context) ([]string, error)
}

// History is the recent-search store.
type History interface {
	Record(query string) error
	List(limit int) []string
	Clear() error
}

// SelectionKind says what a committed selection opens.
type SelectionKind int

const (
	SelectProduct SelectionKind = iota
	SelectSearch
)

// Selection is what the user committed to.
type Selection struct {
	Kind      SelectionKind
	Label     string
	ProductID string
	ModelID   string
	Query     string
	Category  string
	Route     string
}

// Options wires an AppModel to its collaborators.
type Options struct {
	Suggester Suggester
	History   History
	Clipboard clipboard.Clipboard
	Logger    *slog.Logger

	Category       string
	Debounce       time.Duration
	MinQueryLength int
	PopularRefresh time.Duration
	InitialQuery   string
}

// AppModel hosts the search box and its suggestion panel.
type AppModel struct {
	Width       int
	Height      int
	CurrentMode UIMode

	Input   textinput.Model
	Spinner spinner.Model
	Search  SearchModel
	Modal   ModalModel

	FlashMessage string
	FlashIsError bool
	FlashExpiry  time.Time

	// Selected is set when the user commits; the program quits right after.
	Selected *Selection

	suggester      Suggester
	history        History
	clipboard      clipboard.Clipboard
	log            *slog.Logger
	category       string
	popularRefresh time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewAppModel creates the search UI. Recent searches are read here, when
// the model is mounted.
func NewAppModel(opts Options) *AppModel {
	if opts.PopularRefresh <= 0 {
		opts.PopularRefresh = 5 * time.Minute
	}

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Search parts, brands or models"
	input.CharLimit = 120
	input.Focus()

	ctx, cancel := context.WithCancel(context.Background())

	a := &AppModel{
		Width:          80,
		Height:         24,
		CurrentMode:    NormalMode,
		Input:          input,
		Spinner:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(matchStyle)),
		Search:         NewSearchModel(opts.Debounce, opts.MinQueryLength),
		Modal:          NewModalModel(),
		suggester:      opts.Suggester,
		history:        opts.History,
		clipboard:      opts.Clipboard,
		log:            logger.Component(opts.Logger, "tui"),
		category:       opts.Category,
		popularRefresh: opts.PopularRefresh,
		ctx:            ctx,
		cancel:         cancel,
	}
	a.Input.Width = a.Width - 6

	if a.history != nil {
		a.Search.SetRecent(a.history.List(history.DisplayLimit))
	}
	if opts.InitialQuery != "" {
		a.Input.SetValue(opts.InitialQuery)
		a.Input.CursorEnd()
	}
	return a
}

// Init loads popular searches, starts the refresh timer and, with an initial
// query, schedules its lookup.
func (a *AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, a.loadPopular(), a.schedulePopularRefresh()}
	if q := a.Input.Value(); q != "" {
		cmds = append(cmds, a.queryChanged(q))
	}
	return tea.Batch(cmds...)
}

// Update handles app-level messages and routes to appropriate sub-models
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.closed {
		return a, nil
	}

	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.Width = max(m.Width, 30)
		a.Height = m.Height
		a.Input.Width = a.Width - 6
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case spinner.TickMsg:
		if !a.Search.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.Spinner, cmd = a.Spinner.Update(m)
		return a, cmd
	case flashExpiredMsg:
		if !time.Now().Before(a.FlashExpiry) {
			a.FlashMessage = ""
			a.FlashIsError = false
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	case SearchMsg:
		return a.handleSearchMsg(m)
	}

	var cmd tea.Cmd
	a.Input, cmd = a.Input.Update(msg)
	return a, cmd
}

func (a *AppModel) handleSearchMsg(msg SearchMsg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case debounceMsg:
		if !a.Search.Debouncer.Settled(m.Token) {
			return a, nil
		}
		seq := a.Search.Begin()
		return a, tea.Batch(a.fetch(seq, m.Query), a.Spinner.Tick)
	case suggestionsMsg:
		if m.Err != nil && a.Search.Tracker.Current(m.Seq) {
			a.log.Warn("suggestions unavailable", "query", m.Query, "error", m.Err)
		}
		a.Search.Update(m)
		return a, nil
	case popularMsg:
		if m.Err != nil {
			a.log.Debug("popular refresh failed", "error", m.Err)
		}
		a.Search.Update(m)
		return a, nil
	case popularTickMsg:
		return a, tea.Batch(a.loadPopular(), a.schedulePopularRefresh())
	}
	return a, nil
}

// handleKeyPress processes key press events using mode-first architecture
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.CurrentMode {
	case ConfirmClearMode:
		return a.handleConfirmClearKeys(msg.String())
	default:
		return a.handleNormalModeKeys(msg)
	}
}

func (a *AppModel) handleConfirmClearKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c":
		return a.quit()
	case "y", "Y":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		if err := a.history.Clear(); err != nil {
			a.log.Error("failed to clear recent searches", "error", err)
			return a, a.setFlashError("Could not clear recent searches", 3*time.Second)
		}
		a.Search.SetRecent(nil)
		return a, a.setFlashMessage("Cleared recent searches", 2*time.Second)
	case "n", "N", "esc":
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	}
	return a, nil
}

func (a *AppModel) handleNormalModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a.quit()
	case "esc":
		if a.Search.Nav.IsOpen() {
			a.Search.Nav.Handle(search.KeyEscape)
			return a, nil
		}
		return a.quit()
	case "down":
		if !a.Search.Nav.IsOpen() {
			a.Search.Nav.Open()
			return a, nil
		}
		a.Search.Nav.Handle(search.KeyDown)
		return a, nil
	case "up":
		a.Search.Nav.Handle(search.KeyUp)
		return a, nil
	case "enter":
		if !a.Search.Nav.IsOpen() {
			return a.commitQuery()
		}
		switch a.Search.Nav.Handle(search.KeyEnter) {
		case search.ActionCommitItem:
			return a.commitSelected()
		case search.ActionCommitQuery:
			return a.commitQuery()
		}
		return a, nil
	case "ctrl+y":
		return a, a.copyRoute()
	case "ctrl+x":
		if a.history == nil || len(a.Search.Recent) == 0 {
			return a, a.setFlashMessage("No recent searches", 2*time.Second)
		}
		a.CurrentMode = ConfirmClearMode
		a.Modal.Update(ShowClearHistoryConfirmation(len(a.history.List(0))))
		return a, nil
	}

	before := a.Input.Value()
	var cmd tea.Cmd
	a.Input, cmd = a.Input.Update(msg)
	if after := a.Input.Value(); after != before {
		return a, tea.Batch(cmd, a.queryChanged(after))
	}
	return a, cmd
}

// queryChanged feeds a new input value to the debouncer and schedules the
// wake-up for its quiet period.
func (a *AppModel) queryChanged(query string) tea.Cmd {
	token, ok := a.Search.SetQuery(query)
	if !ok {
		return nil
	}
	return tea.Tick(a.Search.Debouncer.Delay(), func(time.Time) tea.Msg {
		return debounceMsg{Token: token, Query: query}
	})
}

// fetch runs one lookup off the UI loop.
func (a *AppModel) fetch(seq uint64, query string) tea.Cmd {
	if a.suggester == nil {
		return nil
	}
	ctx, suggester, category := a.ctx, a.suggester, a.category
	return func() tea.Msg {
		result, err := suggester.Fetch(ctx, query, category)
		return suggestionsMsg{Seq: seq, Query: query, Result: result, Err: err}
	}
}

func (a *AppModel) loadPopular() tea.Cmd {
	if a.suggester == nil {
		return nil
	}
	ctx, suggester := a.ctx, a.suggester
	return func() tea.Msg {
		popular, err := suggester.Popular(ctx)
		return popularMsg{Popular: popular, Err: err}
	}
}

func (a *AppModel) schedulePopularRefresh() tea.Cmd {
	return tea.Tick(a.popularRefresh, func(time.Time) tea.Msg {
		return popularTickMsg{}
	})
}

func (a *AppModel) commitSelected() (tea.Model, tea.Cmd) {
	entry, ok := a.Search.Selected()
	if !ok {
		return a.commitQuery()
	}

	a.record(entry.Label)
	if entry.Suggestion != nil {
		s := entry.Suggestion
		a.Selected = &Selection{
			Kind:      SelectProduct,
			Label:     s.Label,
			ProductID: s.ProductID,
			ModelID:   s.ModelID,
			Category:  a.category,
			Route:     s.Route(),
		}
	} else {
		a.Selected = a.searchSelection(entry.Label)
	}
	return a.quit()
}

func (a *AppModel) commitQuery() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(a.Input.Value())
	if query == "" {
		return a, a.setFlashMessage("Type something to search", 2*time.Second)
	}

	a.record(query)
	a.Selected = a.searchSelection(query)
	return a.quit()
}

func (a *AppModel) searchSelection(query string) *Selection {
	return &Selection{
		Kind:     SelectSearch,
		Label:    query,
		Query:    query,
		Category: a.category,
		Route:    search.SearchRoute(query, a.category),
	}
}

func (a *AppModel) record(query string) {
	if a.history == nil {
		return
	}
	if err := a.history.Record(query); err != nil {
		a.log.Error("failed to record recent search", "query", query, "error", err)
	}
}

// quit tears the search engine down so nothing scheduled before this point
// can touch the model, then exits the program.
func (a *AppModel) quit() (tea.Model, tea.Cmd) {
	a.Teardown()
	return a, tea.Quit
}

// Teardown stops the debouncer, discards in-flight lookups and cancels
// their requests. It is safe to call more than once.
func (a *AppModel) Teardown() {
	if a.closed {
		return
	}
	a.closed = true
	a.Search.Teardown()
	a.cancel()
}

// Closed reports whether Teardown has run.
func (a *AppModel) Closed() bool {
	return a.closed
}

// copyRoute copies the highlighted entry's route, or the typed query's
// search route when nothing is highlighted.
func (a *AppModel) copyRoute() tea.Cmd {
	var route string
	if entry, ok := a.Search.Selected(); ok {
		route = entry.Route(a.category)
	} else if q := strings.TrimSpace(a.Input.Value()); q != "" {
		route = search.SearchRoute(q, a.category)
	} else {
		return a.setFlashMessage("Nothing to copy", 2*time.Second)
	}

	if err := clipboard.WriteString(a.clipboard, route); err != nil {
		a.log.Warn("clipboard write failed", "error", err)
		return a.setFlashError(fmt.Sprintf("Copy failed: %v", err), 3*time.Second)
	}
	return a.setFlashMessage("Copied "+route, 2*time.Second)
}

// setFlashMessage sets a flash message that will disappear after the specified duration
func (a *AppModel) setFlashMessage(message string, duration time.Duration) tea.Cmd {
	a.FlashMessage = message
	a.FlashIsError = false
	a.FlashExpiry = time.Now().Add(duration)
	return tea.Tick(duration, func(t time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

func (a *AppModel) setFlashError(message string, duration time.Duration) tea.Cmd {
	cmd := a.setFlashMessage(message, duration)
	a.FlashIsError = true
	return cmd
}

// AppView renders the complete application using pure functions
func AppView(model AppModel) string {
	var b strings.Builder

	b.WriteString(model.Input.View())
	if model.Search.Loading {
		b.WriteString(" " + model.Spinner.View())
	}
	b.WriteString("\n")

	if model.Search.Nav.IsOpen() {
		b.WriteString(PanelView(PanelProps{
			View:     model.Search.View,
			Index:    model.Search.Nav.Index(),
			Query:    model.Search.Query,
			Loading:  model.Search.Loading,
			Spinner:  model.Spinner.View(),
			Width:    model.Width,
			MaxLines: model.Height - 6,
		}))
		b.WriteString("\n")
	}

	b.WriteString(renderStatusLine(model))
	view := b.String()

	if model.Modal.Active {
		return ModalView(model.Modal, view, model.Width, model.Height)
	}
	return view
}

// View method for tea.Model compatibility
func (a *AppModel) View() string {
	if a.closed {
		return ""
	}
	return AppView(*a)
}

// renderStatusLine renders the bottom status line (pure function)
func renderStatusLine(model AppModel) string {
	style := lipgloss.NewStyle().Width(model.Width)

	if model.FlashMessage != "" && time.Now().Before(model.FlashExpiry) {
		if model.FlashIsError {
			return style.Inherit(errorStyle).Render(model.FlashMessage)
		}
		return style.Inherit(flashStyle).Render(model.FlashMessage)
	}

	help := "↑/↓ select • enter search • esc close • ctrl+y copy link • ctrl+x clear recent • ctrl+c quit"
	if !model.Search.Nav.IsOpen() {
		help = "type to search • ↓ open suggestions • enter search • esc quit"
	}
	return style.Inherit(mutedStyle).Render(help)
}
