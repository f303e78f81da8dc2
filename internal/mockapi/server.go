// Package mockapi is a stand-in for the storefront backend's search and
// catalog endpoints, for local development and tests.
package mockapi

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yiblet/spares/internal/catalog"
	"github.com/yiblet/spares/internal/suggest"
)

const (
	maxSuggestions = 10
	maxPopular     = 10
)

// Server holds the stub's catalog and query statistics.
type Server struct {
	mu       sync.Mutex
	products []Product
	counts   map[string]int

	failPrimary  bool
	failFallback bool
	delay        time.Duration
}

// New creates a stub backend from seed.
func New(seed *Seed) *Server {
	if seed == nil {
		seed = DefaultSeed()
	}

	counts := make(map[string]int, len(seed.Popular))
	for q, n := range seed.Popular {
		counts[strings.ToLower(strings.TrimSpace(q))] = n
	}

	return &Server{
		products: append([]Product(nil), seed.Products...),
		counts:   counts,
	}
}

// SetFailures makes the primary and/or fallback lookup answer 503.
func (s *Server) SetFailures(primary, fallback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPrimary = primary
	s.failFallback = fallback
}

// SetDelay makes every lookup sleep before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Router returns the gin engine serving the stub endpoints.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	search := r.Group("/search")
	search.GET("/autocomplete", s.handleAutocomplete)
	search.GET("/suggestions", s.handleSuggestions)
	search.GET("/popular", s.handlePopular)

	r.GET("/brands", s.handleBrands)

	return r
}

type lookupRequest struct {
	Query    string `form:"q"`
	Category string `form:"category"`
}

func (s *Server) handleAutocomplete(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.pause(c)
	if s.failing(true) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "autocomplete unavailable"})
		return
	}

	s.count(req.Query)
	c.JSON(http.StatusOK, suggest.AutocompleteResponse{
		Suggestions: s.match(req.Query, req.Category),
		Popular:     s.popular(),
	})
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.pause(c)
	if s.failing(false) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "suggestions unavailable"})
		return
	}

	// The legacy endpoint speaks a flatter dialect: id/name instead of productId/label.
	matches := s.match(req.Query, req.Category)
	items := make([]gin.H, len(matches))
	for i, m := range matches {
		item := gin.H{"id": m.ProductID, "name": m.Label, "matchType": m.MatchType}
		if m.ModelID != "" {
			item["modelId"] = m.ModelID
		}
		items[i] = item
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handlePopular(c *gin.Context) {
	popular := s.popular()
	entries := make([]suggest.PopularEntry, len(popular))

	s.mu.Lock()
	for i, q := range popular {
		entries[i] = suggest.PopularEntry{Query: q, Count: s.counts[q]}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, suggest.PopularResponse{Popular: entries})
}

func (s *Server) handleBrands(c *gin.Context) {
	c.JSON(http.StatusOK, s.Brands())
}

// Brands derives the brand/model catalog from the products.
func (s *Server) Brands() []catalog.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := make(map[string]int)
	brands := []catalog.Brand{}
	for _, p := range s.products {
		if p.BrandID == "" {
			continue
		}
		i, ok := index[p.BrandID]
		if !ok {
			i = len(brands)
			index[p.BrandID] = i
			brands = append(brands, catalog.Brand{ID: p.BrandID, Name: p.Brand})
		}
		if p.ModelID == "" || hasModel(brands[i].Models, p.ModelID) {
			continue
		}
		brands[i].Models = append(brands[i].Models, catalog.Model{ID: p.ModelID, Name: p.ModelName})
	}

	sort.Slice(brands, func(a, b int) bool { return brands[a].Name < brands[b].Name })
	return brands
}

// match ranks products against q: exact label first, then brand, model and
// plain substring matches.
func (s *Server) match(q, category string) []suggest.Suggestion {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return []suggest.Suggestion{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := map[suggest.MatchType][]suggest.Suggestion{}
	for _, p := range s.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}

		var mt suggest.MatchType
		switch {
		case strings.ToLower(p.Name) == needle:
			mt = suggest.MatchExact
		case p.Brand != "" && strings.Contains(strings.ToLower(p.Brand), needle):
			mt = suggest.MatchBrand
		case p.ModelName != "" && strings.Contains(strings.ToLower(p.ModelName), needle):
			mt = suggest.MatchModel
		case strings.Contains(strings.ToLower(p.Name), needle):
			mt = suggest.MatchPartial
		default:
			continue
		}

		buckets[mt] = append(buckets[mt], suggest.Suggestion{
			Label:     p.Name,
			ProductID: p.ID,
			ModelID:   p.ModelID,
			MatchType: mt,
		})
	}

	out := make([]suggest.Suggestion, 0, maxSuggestions)
	for _, mt := range []suggest.MatchType{suggest.MatchExact, suggest.MatchBrand, suggest.MatchModel, suggest.MatchPartial} {
		for _, sg := range buckets[mt] {
			if len(out) == maxSuggestions {
				return out
			}
			out = append(out, sg)
		}
	}
	return out
}

func (s *Server) count(q string) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return
	}
	s.mu.Lock()
	s.counts[q]++
	s.mu.Unlock()
}

// popular ranks queries by frequency, ties broken alphabetically.
func (s *Server) popular() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	queries := make([]string, 0, len(s.counts))
	for q := range s.counts {
		queries = append(queries, q)
	}
	sort.Slice(queries, func(i, j int) bool {
		if s.counts[queries[i]] != s.counts[queries[j]] {
			return s.counts[queries[i]] > s.counts[queries[j]]
		}
		return queries[i] < queries[j]
	})

	if len(queries) > maxPopular {
		queries = queries[:maxPopular]
	}
	return queries
}

func (s *Server) failing(primary bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if primary {
		return s.failPrimary
	}
	return s.failFallback
}

func (s *Server) pause(c *gin.Context) {
	s.mu.Lock()
	d := s.delay
	s.mu.Unlock()
	if d <= 0 {
		return
	}

	select {
	case <-time.After(d):
	case <-c.Request.Context().Done():
	}
}

func hasModel(models []catalog.Model, id string) bool {
	for _, m := range models {
		if m.ID == id {
			return true
		}
	}
	return false
}
