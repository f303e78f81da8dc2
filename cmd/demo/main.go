package main

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yiblet/spares/internal/api"
	"github.com/yiblet/spares/internal/history"
	"github.com/yiblet/spares/internal/logger"
	"github.com/yiblet/spares/internal/mockapi"
	"github.com/yiblet/spares/internal/search"
	"github.com/yiblet/spares/internal/store/memstore"
	"github.com/yiblet/spares/internal/suggest"
)

func main() {
	fmt.Println("spares search engine demo")

	gin.SetMode(gin.ReleaseMode)
	backend := mockapi.New(nil)
	ts := httptest.NewServer(backend.Router())
	defer ts.Close()

	// In-memory client state and a fetcher against the stub backend
	store := memstore.NewMemoryStore()
	defer store.Close()
	lg := logger.New(os.Stderr, false)
	recent := history.New(store.State(), lg)

	client, err := api.New(ts.URL)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}
	fetcher := suggest.NewFetcher(client, suggest.Options{Logger: lg})
	ctx := context.Background()

	for _, q := range []string{"vivo v21", "  battery  ", "VIVO V21", "x"} {
		if err := recent.Record(q); err != nil {
			log.Fatalf("Failed to record %q: %v", q, err)
		}
	}

	popular, err := fetcher.Popular(ctx)
	if err != nil {
		log.Printf("Failed to load popular searches: %v", err)
	}

	fmt.Println("\nEmpty query shows recent and popular searches:")
	printView(search.Compose(search.Inputs{
		Recent:  recent.List(history.DisplayLimit),
		Popular: popular,
	}))

	// Keystrokes inside one quiet period settle once, on the last value
	debouncer := search.NewDebouncer(search.DefaultDelay, search.DefaultMinLength)
	var tokens []uint64
	for _, q := range []string{"s", "sa", "sam"} {
		if token, ok := debouncer.Change(q); ok {
			tokens = append(tokens, token)
		} else {
			fmt.Printf("\n%q is too short, suggestions cleared\n", q)
		}
	}
	for i, token := range tokens {
		fmt.Printf("token %d settled: %v\n", i, debouncer.Settled(token))
	}

	// Latest request wins
	tracker := &suggest.Tracker{}
	stale := tracker.Next()
	current := tracker.Next()
	fmt.Printf("response for request %d applied: %v\n", stale, tracker.Current(stale))

	result, err := fetcher.Fetch(ctx, "sam", "")
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}
	fmt.Printf("response for request %d applied: %v (%s)\n", current, tracker.Current(current), result.Source)

	view := search.Compose(search.Inputs{Query: "sam", Suggestions: result.Suggestions})
	fmt.Println("\nSuggestions for \"sam\":")
	printView(view)

	// Arrow down twice, then enter
	nav := search.NewNavigator()
	nav.Open()
	nav.Reset(view.Len())
	nav.Handle(search.KeyDown)
	nav.Handle(search.KeyDown)
	if nav.Handle(search.KeyEnter) == search.ActionCommitItem {
		entry, _ := view.At(nav.Index())
		fmt.Printf("\nCommitted %q -> %s\n", entry.Label, entry.Route(""))
		recent.Record(entry.Label)
	}

	// Primary outage: the fallback endpoint answers
	backend.SetFailures(true, false)
	result, err = fetcher.Fetch(ctx, "redmi", "display")
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}
	fmt.Printf("\nWith the primary endpoint down, %d suggestion(s) from %s\n", len(result.Suggestions), result.Source)

	// Total outage: nothing to show, and the caller keeps its state
	backend.SetFailures(true, true)
	if _, err := fetcher.Fetch(ctx, "iphone", ""); err != nil {
		fmt.Printf("With both endpoints down: %v\n", err)
	}

	fmt.Printf("\nRecent searches now: %s\n", strings.Join(recent.List(0), ", "))
}

func printView(view search.View) {
	if view.NoResults {
		fmt.Println("  (no results)")
		return
	}
	var section search.Section = -1
	for _, entry := range view.Entries {
		if entry.Section != section {
			section = entry.Section
			fmt.Printf("  %s\n", section.Title())
		}
		var b strings.Builder
		for _, seg := range entry.Segments {
			if seg.Match {
				b.WriteString("[" + seg.Text + "]")
			} else {
				b.WriteString(seg.Text)
			}
		}
		fmt.Printf("    %s\n", b.String())
	}
}
