package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/spares/internal/clipboard/mockboard"
	"github.com/yiblet/spares/internal/history"
	"github.com/yiblet/spares/internal/store/memstore"
	"github.com/yiblet/spares/internal/suggest"
)

// fakeSuggester answers lookups from a table and records every call.
type fakeSuggester struct {
	mu      sync.Mutex
	results map[string]suggest.Result
	err     error
	popular []string
	fetches []string
}

func (f *fakeSuggester) Fetch(ctx context.Context, query, category string) (suggest.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, query)
	if f.err != nil {
		return suggest.Result{Query: query}, f.err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return suggest.Result{Query: query, Suggestions: []suggest.Suggestion{}}, nil
}

func (f *fakeSuggester) Popular(ctx context.Context) ([]string, error) {
	return f.popular, nil
}

func (f *fakeSuggester) Fetches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetches...)
}

var samResult = suggest.Result{
	Query: "sam",
	Suggestions: []suggest.Suggestion{
		{Label: "Samsung A14", ProductID: "p1", MatchType: suggest.MatchBrand},
	},
	Popular: []string{"samsung"},
	Source:  suggest.SourcePrimary,
}

type testApp struct {
	*AppModel
	suggester *fakeSuggester
	history   *history.Store
	clipboard *mockboard.MockClipboard
}

func newTestApp(t *testing.T, recent ...string) testApp {
	t.Helper()

	hist := history.New(memstore.NewMemoryStore().State(), nil)
	for i := len(recent) - 1; i >= 0; i-- {
		if err := hist.Record(recent[i]); err != nil {
			t.Fatalf("Record(%q) error: %v", recent[i], err)
		}
	}

	fs := &fakeSuggester{results: map[string]suggest.Result{"sam": samResult}}
	cb := mockboard.New()

	a := NewAppModel(Options{
		Suggester:      fs,
		History:        hist,
		Clipboard:      cb,
		Category:       "",
		Debounce:       time.Millisecond,
		PopularRefresh: time.Millisecond,
	})
	a.Input.Cursor.SetMode(cursor.CursorStatic)

	return testApp{AppModel: a, suggester: fs, history: hist, clipboard: cb}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText sends one key message per rune and returns the commands produced.
func typeText(a *AppModel, s string) []tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range s {
		_, cmd := a.Update(runes(string(r)))
		cmds = append(cmds, cmd)
	}
	return cmds
}

// run executes cmd, flattening batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pump feeds every message produced by cmds back into the model until the
// queue drains.
func pump(a *AppModel, cmds ...tea.Cmd) {
	var queue []tea.Msg
	for _, cmd := range cmds {
		queue = append(queue, run(cmd)...)
	}
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, run(next)...)
	}
}

func isQuit(cmd tea.Cmd) bool {
	for _, msg := range run(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestNewAppModel_ReadsRecentOnMount(t *testing.T) {
	app := newTestApp(t, "vivo v21", "iphone 13", "a1", "a2", "a3", "a4")

	if len(app.Search.Recent) != history.DisplayLimit {
		t.Fatalf("expected %d recent searches, got %v", history.DisplayLimit, app.Search.Recent)
	}
	if app.Search.Recent[0] != "vivo v21" {
		t.Errorf("newest first, got %v", app.Search.Recent)
	}
	if app.Search.Nav.IsOpen() {
		t.Error("panel should start closed")
	}
}

func TestAppModel_ShortQueryNoFetch(t *testing.T) {
	app := newTestApp(t, "vivo")

	cmds := typeText(app.AppModel, "s")
	pump(app.AppModel, cmds...)

	if got := app.suggester.Fetches(); len(got) != 0 {
		t.Errorf("expected no fetch, got %v", got)
	}
	if len(app.Search.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", app.Search.Suggestions)
	}
	if !app.Search.Nav.IsOpen() {
		t.Error("typing should open the panel")
	}
	if app.Search.View.Len() != 1 || app.Search.View.Entries[0].Label != "vivo" {
		t.Errorf("short query should show recent searches, got %+v", app.Search.View.Entries)
	}
}

func TestAppModel_RapidKeystrokesFetchOnce(t *testing.T) {
	app := newTestApp(t)

	cmds := typeText(app.AppModel, "samsu")
	pump(app.AppModel, cmds...)

	got := app.suggester.Fetches()
	if len(got) != 1 || got[0] != "samsu" {
		t.Errorf("expected exactly one fetch for the final value, got %v", got)
	}
}

func TestAppModel_SamScenario(t *testing.T) {
	app := newTestApp(t)

	pump(app.AppModel, typeText(app.AppModel, "sam")...)

	view := app.Search.View
	if view.Len() != 1 {
		t.Fatalf("expected one suggestion, got %+v", view.Entries)
	}
	entry := view.Entries[0]
	if entry.Label != "Samsung A14" {
		t.Errorf("Label = %q", entry.Label)
	}
	if len(entry.Segments) == 0 || entry.Segments[0].Text != "Sam" || !entry.Segments[0].Match {
		t.Errorf("expected \"Sam\" highlighted, got %+v", entry.Segments)
	}
	if len(app.Search.Popular) != 1 || app.Search.Popular[0] != "samsung" {
		t.Errorf("popular should update from the lookup, got %v", app.Search.Popular)
	}
	if app.Search.Loading {
		t.Error("loading should end when the response arrives")
	}
	if !strings.Contains(app.View(), "Samsung A14") {
		t.Errorf("view should list the suggestion:\n%s", app.View())
	}
}

func TestAppModel_StaleResponseDiscarded(t *testing.T) {
	app := newTestApp(t)
	app.Search.SetQuery("vivo")

	r1 := suggest.Result{Suggestions: []suggest.Suggestion{{Label: "Vivo Y20", ProductID: "p5"}}}
	r2 := suggest.Result{Suggestions: []suggest.Suggestion{{Label: "Vivo V21 Display", ProductID: "p4"}}}

	seq1 := app.Search.Begin()
	seq2 := app.Search.Begin()

	// The newer response lands first.
	app.Update(suggestionsMsg{Seq: seq2, Query: "vivo v", Result: r2})
	app.Update(suggestionsMsg{Seq: seq1, Query: "vivo", Result: r1})

	if len(app.Search.Suggestions) != 1 || app.Search.Suggestions[0].ProductID != "p4" {
		t.Errorf("older response overwrote newer one: %+v", app.Search.Suggestions)
	}
}

func TestAppModel_FailureKeepsSuggestions(t *testing.T) {
	app := newTestApp(t)
	pump(app.AppModel, typeText(app.AppModel, "sam")...)

	app.suggester.err = errors.Join(suggest.ErrLookupFailed, errors.New("both down"))
	pump(app.AppModel, typeText(app.AppModel, "s")...)

	if len(app.suggester.Fetches()) != 2 {
		t.Fatalf("expected a second lookup, got %v", app.suggester.Fetches())
	}
	if len(app.Search.Suggestions) != 1 || app.Search.Suggestions[0].Label != "Samsung A14" {
		t.Errorf("failed lookup should leave suggestions unchanged, got %+v", app.Search.Suggestions)
	}
	if app.Search.Loading {
		t.Error("loading should end after a failed lookup")
	}
}

func TestAppModel_FailureWithNothingShownStaysEmpty(t *testing.T) {
	app := newTestApp(t)
	app.suggester.err = suggest.ErrLookupFailed

	pump(app.AppModel, typeText(app.AppModel, "vivo")...)

	if len(app.Search.Suggestions) != 0 {
		t.Errorf("expected empty suggestions, got %+v", app.Search.Suggestions)
	}
	if app.Closed() {
		t.Error("a failed lookup must not end the program")
	}
}

func TestAppModel_ShorteningQueryDropsInflight(t *testing.T) {
	app := newTestApp(t)
	app.Search.SetQuery("sam")
	seq := app.Search.Begin()

	app.Search.SetQuery("s")
	if app.Search.Loading {
		t.Error("a short query clears the loading state")
	}

	app.Update(suggestionsMsg{Seq: seq, Query: "sam", Result: samResult})
	if len(app.Search.Suggestions) != 0 {
		t.Errorf("response for an abandoned query was applied: %+v", app.Search.Suggestions)
	}
}

func TestAppModel_DownClamps(t *testing.T) {
	app := newTestApp(t, "vivo", "iphone 13")

	app.Update(key(tea.KeyDown)) // opens the panel
	if !app.Search.Nav.IsOpen() || app.Search.Nav.Index() != -1 {
		t.Fatalf("first down should open the panel without selecting")
	}

	for i := 0; i < 5; i++ {
		app.Update(key(tea.KeyDown))
	}
	if app.Search.Nav.Index() != 1 {
		t.Errorf("Index() = %d, want 1", app.Search.Nav.Index())
	}

	app.Update(key(tea.KeyUp))
	app.Update(key(tea.KeyUp))
	if app.Search.Nav.Index() != -1 {
		t.Errorf("Index() = %d, want -1", app.Search.Nav.Index())
	}
}

func TestAppModel_KeysIgnoredWhileClosed(t *testing.T) {
	app := newTestApp(t, "vivo")

	app.Update(key(tea.KeyUp))
	if app.Search.Nav.IsOpen() || app.Search.Nav.Index() != -1 {
		t.Error("up on a closed panel should do nothing")
	}
}

func TestAppModel_EnterCommitsSuggestion(t *testing.T) {
	app := newTestApp(t)
	pump(app.AppModel, typeText(app.AppModel, "sam")...)

	app.Update(key(tea.KeyDown))
	_, cmd := app.Update(key(tea.KeyEnter))

	if !isQuit(cmd) {
		t.Error("committing should quit")
	}
	sel := app.Selected
	if sel == nil || sel.Kind != SelectProduct || sel.Route != "/product/p1" {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if got := app.history.List(0); len(got) != 1 || got[0] != "Samsung A14" {
		t.Errorf("history = %v", got)
	}
	if !app.Closed() {
		t.Error("committing should tear down")
	}
}

func TestAppModel_EnterCommitsRawQuery(t *testing.T) {
	app := newTestApp(t)
	app.Input.SetValue("iphone 13")
	app.Search.SetQuery("iphone 13")

	_, cmd := app.Update(key(tea.KeyEnter))
	if !isQuit(cmd) {
		t.Error("committing should quit")
	}
	sel := app.Selected
	if sel == nil || sel.Kind != SelectSearch || sel.Route != "/search?q=iphone+13" {
		t.Fatalf("unexpected selection %+v", sel)
	}
	if got := app.history.List(0); len(got) != 1 || got[0] != "iphone 13" {
		t.Errorf("history = %v", got)
	}
}

func TestAppModel_EnterOnRecentSearch(t *testing.T) {
	app := newTestApp(t, "vivo v21")

	app.Update(key(tea.KeyDown))
	app.Update(key(tea.KeyDown))
	app.Update(key(tea.KeyEnter))

	if app.Selected == nil || app.Selected.Route != "/search?q=vivo+v21" {
		t.Fatalf("unexpected selection %+v", app.Selected)
	}
}

func TestAppModel_EnterBlankQuery(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(key(tea.KeyEnter))
	if app.Selected != nil || app.Closed() {
		t.Error("blank query should not commit")
	}
	if cmd == nil || app.FlashMessage == "" {
		t.Error("expected a flash message")
	}
}

func TestAppModel_Escape(t *testing.T) {
	app := newTestApp(t, "vivo")
	app.Update(key(tea.KeyDown))

	_, cmd := app.Update(key(tea.KeyEsc))
	if isQuit(cmd) || app.Search.Nav.IsOpen() {
		t.Fatal("first escape should only close the panel")
	}

	_, cmd = app.Update(key(tea.KeyEsc))
	if !isQuit(cmd) {
		t.Error("escape on a closed panel should quit")
	}
	if app.Selected != nil {
		t.Error("quitting should not select anything")
	}
}

func TestAppModel_TeardownIgnoresLateMessages(t *testing.T) {
	app := newTestApp(t)
	app.Search.SetQuery("sam")
	seq := app.Search.Begin()

	_, cmd := app.Update(key(tea.KeyCtrlC))
	if !isQuit(cmd) {
		t.Fatal("ctrl+c should quit")
	}

	app.Update(suggestionsMsg{Seq: seq, Query: "sam", Result: samResult})
	if len(app.Search.Suggestions) != 0 {
		t.Error("no state update after teardown")
	}
	if _, cmd := app.Update(debounceMsg{Token: 1, Query: "sam"}); cmd != nil {
		t.Error("no lookup after teardown")
	}
	if app.Search.Debouncer.Settled(1) {
		t.Error("debouncer should be stopped")
	}
	if app.ctx.Err() == nil {
		t.Error("in-flight requests should be cancelled")
	}
}

func TestAppModel_CopyRoute(t *testing.T) {
	app := newTestApp(t)
	pump(app.AppModel, typeText(app.AppModel, "sam")...)
	app.Update(key(tea.KeyDown))

	app.Update(key(tea.KeyCtrlY))
	if got := app.clipboard.Text(); got != "/product/p1" {
		t.Errorf("clipboard = %q", got)
	}
	if !strings.Contains(app.FlashMessage, "/product/p1") {
		t.Errorf("flash = %q", app.FlashMessage)
	}

	app.Update(key(tea.KeyUp))
	app.Update(key(tea.KeyCtrlY))
	if got := app.clipboard.Text(); got != "/search?q=sam" {
		t.Errorf("with nothing highlighted the typed query is copied, got %q", got)
	}
}

func TestAppModel_CopyFailure(t *testing.T) {
	app := newTestApp(t)
	app.clipboard.FailWrites(true)
	app.Input.SetValue("vivo")

	app.Update(key(tea.KeyCtrlY))
	if !app.FlashIsError {
		t.Errorf("expected an error flash, got %q", app.FlashMessage)
	}
}

func TestAppModel_ClearHistory(t *testing.T) {
	app := newTestApp(t, "vivo", "iphone 13")

	app.Update(key(tea.KeyCtrlX))
	if app.CurrentMode != ConfirmClearMode || !app.Modal.Active {
		t.Fatal("ctrl+x should ask for confirmation")
	}
	if !strings.Contains(app.View(), "Clear recent searches?") {
		t.Errorf("modal not rendered:\n%s", app.View())
	}

	app.Update(runes("n"))
	if app.CurrentMode != NormalMode || len(app.history.List(0)) != 2 {
		t.Fatal("declining should keep history")
	}

	app.Update(key(tea.KeyCtrlX))
	app.Update(runes("y"))
	if len(app.history.List(0)) != 0 || len(app.Search.Recent) != 0 {
		t.Error("history should be cleared")
	}
	if app.Modal.Active {
		t.Error("modal should close")
	}
}

func TestAppModel_PopularRefresh(t *testing.T) {
	app := newTestApp(t)
	app.suggester.popular = []string{"battery", "display"}

	_, cmd := app.Update(popularTickMsg{})
	for _, msg := range run(cmd) {
		if _, ok := msg.(popularMsg); ok {
			app.Update(msg)
		}
	}

	if len(app.Search.Popular) != 2 || app.Search.Popular[0] != "battery" {
		t.Errorf("Popular = %v", app.Search.Popular)
	}
	if app.Search.View.Len() != 2 || app.Search.View.Entries[0].Section.String() != "popular" {
		t.Errorf("short query should list popular searches, got %+v", app.Search.View.Entries)
	}
}

func TestAppModel_InitialQuery(t *testing.T) {
	fs := &fakeSuggester{results: map[string]suggest.Result{"sam": samResult}}
	a := NewAppModel(Options{
		Suggester:    fs,
		Debounce:     time.Millisecond,
		InitialQuery: "sam",
	})

	if a.Input.Value() != "sam" {
		t.Errorf("Input = %q", a.Input.Value())
	}
	pump(a, a.queryChanged(a.Input.Value()))
	if got := fs.Fetches(); len(got) != 1 || got[0] != "sam" {
		t.Errorf("fetches = %v", got)
	}
}

func TestAppModel_WindowResize(t *testing.T) {
	app := newTestApp(t)

	app.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	if app.Width != 140 || app.Height != 30 {
		t.Errorf("size = %dx%d", app.Width, app.Height)
	}

	app.Update(tea.WindowSizeMsg{Width: 10, Height: 30})
	if app.Width != 30 {
		t.Errorf("width should be clamped to 30, got %d", app.Width)
	}
}
