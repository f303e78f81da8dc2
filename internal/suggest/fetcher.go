package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/yiblet/spares/internal/logger"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultRateLimit = 5.0
	DefaultBurst     = 5
	DefaultCacheTTL  = time.Minute

	popularCacheKey = "popular"
)

// ErrLookupFailed is returned when both the primary and fallback lookups fail.
var ErrLookupFailed = errors.New("suggestion lookup failed")

// Lookup is the backend surface the fetcher needs.
type Lookup interface {
	Autocomplete(ctx context.Context, query, category string) (*AutocompleteResponse, error)
	Fallback(ctx context.Context, query, category string) ([]Suggestion, error)
	Popular(ctx context.Context) ([]string, error)
}

// Options tune a Fetcher. Zero values select the defaults.
type Options struct {
	// Timeout bounds each individual backend request.
	Timeout time.Duration

	// RateLimit is the sustained outbound requests per second.
	// A negative value disables limiting.
	RateLimit float64

	// Burst is the limiter's bucket size.
	Burst int

	// CacheTTL is how long successful lookups are reused.
	// A negative value disables caching.
	CacheTTL time.Duration

	Logger *slog.Logger
}

// Fetcher runs suggestion lookups with a fallback, a per-request timeout, an
// outbound rate limit and a short-lived response cache.
type Fetcher struct {
	lookup  Lookup
	timeout time.Duration
	limiter *rate.Limiter
	cache   *cache.Cache
	log     *slog.Logger
}

// NewFetcher creates a fetcher over lookup.
func NewFetcher(lookup Lookup, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	f := &Fetcher{
		lookup:  lookup,
		timeout: opts.Timeout,
		log:     logger.Component(opts.Logger, "suggest"),
	}
	if opts.RateLimit > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	}
	if opts.CacheTTL > 0 {
		f.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return f
}

// Fetch looks up suggestions for query. When the primary lookup fails it tries
// the fallback once with the same arguments. If both fail the error wraps
// ErrLookupFailed and the returned Result is empty; callers keep whatever they
// were showing.
func (f *Fetcher) Fetch(ctx context.Context, query, category string) (Result, error) {
	key := cacheKey(category, query)
	if cached, ok := f.cached(key); ok {
		cached.Source = SourceCache
		return cached, nil
	}

	resp, primaryErr := f.primary(ctx, query, category)
	if primaryErr == nil {
		result := Result{
			Query:       query,
			Suggestions: resp.Suggestions,
			Popular:     resp.Popular,
			Source:      SourcePrimary,
		}
		if result.Suggestions == nil {
			result.Suggestions = []Suggestion{}
		}
		f.store(key, result)
		if resp.Popular != nil {
			f.storePopular(resp.Popular)
		}
		return result, nil
	}

	if ctx.Err() != nil {
		return Result{Query: query}, fmt.Errorf("lookup for %q abandoned: %w", query, ctx.Err())
	}

	f.log.Warn("primary lookup failed, trying fallback", "query", query, "category", category, "error", primaryErr)

	items, fallbackErr := f.fallback(ctx, query, category)
	if fallbackErr == nil {
		if items == nil {
			items = []Suggestion{}
		}
		return Result{
			Query:       query,
			Suggestions: items,
			Source:      SourceFallback,
		}, nil
	}

	f.log.Error("suggestion lookup failed", "query", query, "category", category,
		"primary_error", primaryErr, "fallback_error", fallbackErr)

	return Result{Query: query}, fmt.Errorf("%w: %w", ErrLookupFailed, errors.Join(primaryErr, fallbackErr))
}

// Popular returns the popular queries, from cache when fresh.
func (f *Fetcher) Popular(ctx context.Context) ([]string, error) {
	if f.cache != nil {
		if v, ok := f.cache.Get(popularCacheKey); ok {
			return v.([]string), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	popular, err := f.lookup.Popular(ctx)
	if err != nil {
		f.log.Warn("popular lookup failed", "error", err)
		return nil, fmt.Errorf("popular lookup failed: %w", err)
	}

	f.storePopular(popular)
	return popular, nil
}

// Flush drops every cached response.
func (f *Fetcher) Flush() {
	if f.cache != nil {
		f.cache.Flush()
	}
}

func (f *Fetcher) primary(ctx context.Context, query, category string) (*AutocompleteResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.lookup.Autocomplete(ctx, query, category)
}

func (f *Fetcher) fallback(ctx context.Context, query, category string) ([]Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.lookup.Fallback(ctx, query, category)
}

func (f *Fetcher) wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (f *Fetcher) cached(key string) (Result, bool) {
	if f.cache == nil {
		return Result{}, false
	}
	v, ok := f.cache.Get(key)
	if !ok {
		return Result{}, false
	}
	return v.(Result), true
}

// store caches primary results only; a fallback answer means the primary
// endpoint is degraded and should be retried next time.
func (f *Fetcher) store(key string, result Result) {
	if f.cache != nil {
		f.cache.SetDefault(key, result)
	}
}

func (f *Fetcher) storePopular(popular []string) {
	if f.cache != nil {
		f.cache.SetDefault(popularCacheKey, popular)
	}
}

func cacheKey(category, query string) string {
	return "q\x00" + category + "\x00" + strings.ToLower(strings.TrimSpace(query))
}
