// Package api is the HTTP client for the storefront backend endpoints the
// search box and catalog browser consume.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yiblet/spares/internal/catalog"
	"github.com/yiblet/spares/internal/suggest"
)

// Endpoint paths relative to the base URL.
const (
	AutocompletePath = "/search/autocomplete"
	FallbackPath     = "/search/suggestions"
	PopularPath      = "/search/popular"
	BrandsPath       = "/brands"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client talks to the storefront backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "spares",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Autocomplete runs the primary suggestion lookup.
func (c *Client) Autocomplete(ctx context.Context, query, category string) (*suggest.AutocompleteResponse, error) {
	var resp suggest.AutocompleteResponse
	if err := c.getJSON(ctx, AutocompletePath, lookupParams(query, category), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Fallback runs the secondary lookup, which answers with a flat array.
func (c *Client) Fallback(ctx context.Context, query, category string) ([]suggest.Suggestion, error) {
	var resp []suggest.Suggestion
	if err := c.getJSON(ctx, FallbackPath, lookupParams(query, category), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Popular returns the backend-ranked popular queries.
func (c *Client) Popular(ctx context.Context) ([]string, error) {
	var resp suggest.PopularResponse
	if err := c.getJSON(ctx, PopularPath, nil, &resp); err != nil {
		return nil, err
	}

	queries := make([]string, 0, len(resp.Popular))
	for _, p := range resp.Popular {
		if q := strings.TrimSpace(p.Query); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

// Brands returns the catalog's brands with their models.
func (c *Client) Brands(ctx context.Context) ([]catalog.Brand, error) {
	var resp []catalog.Brand
	if err := c.getJSON(ctx, BrandsPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func lookupParams(query, category string) url.Values {
	params := url.Values{}
	params.Set("q", query)
	if category != "" {
		params.Set("category", category)
	}
	return params
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxBodySize)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, 256))
		return &StatusError{
			Method:     req.Method,
			URL:        u.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
