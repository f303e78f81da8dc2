// Package suggest fetches autocomplete suggestions and popular searches from
// the storefront backend.
package suggest

import (
	"encoding/json"
	"net/url"
	"strings"
)

// MatchType classifies why a suggestion matched.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchBrand   MatchType = "brand"
	MatchModel   MatchType = "model"
)

// Valid reports whether m is one of the known match types.
func (m MatchType) Valid() bool {
	switch m {
	case MatchExact, MatchPartial, MatchBrand, MatchModel:
		return true
	}
	return false
}

// Suggestion is a single autocomplete candidate tied to a catalog product.
type Suggestion struct {
	Label     string    `json:"label"`
	ProductID string    `json:"productId"`
	ModelID   string    `json:"modelId,omitempty"`
	MatchType MatchType `json:"matchType"`
}

// UnmarshalJSON accepts the loosely typed items the fallback endpoint returns:
// numeric ids, "name" or "title" instead of "label", and unknown match types.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label     string          `json:"label"`
		Name      string          `json:"name"`
		Title     string          `json:"title"`
		ProductID json.RawMessage `json:"productId"`
		ID        json.RawMessage `json:"id"`
		ModelID   json.RawMessage `json:"modelId"`
		MatchType string          `json:"matchType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Label = firstNonEmpty(raw.Label, raw.Name, raw.Title)
	s.ProductID = firstNonEmpty(rawID(raw.ProductID), rawID(raw.ID))
	s.ModelID = rawID(raw.ModelID)
	s.MatchType = MatchType(strings.ToLower(raw.MatchType))
	if !s.MatchType.Valid() {
		s.MatchType = MatchPartial
	}
	return nil
}

// Key returns the stable identity used for list keys.
func (s Suggestion) Key() string {
	return s.ProductID + "|" + s.ModelID + "|" + s.Label
}

// Route returns the storefront path a suggestion navigates to.
func (s Suggestion) Route() string {
	route := "/product/" + url.PathEscape(s.ProductID)
	if s.ModelID != "" {
		route += "?model=" + url.QueryEscape(s.ModelID)
	}
	return route
}

// AutocompleteResponse is the body of the primary lookup.
type AutocompleteResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Popular     []string     `json:"popular"`
}

// PopularResponse is the body of the popular-only lookup.
type PopularResponse struct {
	Popular []PopularEntry `json:"popular"`
}

// PopularEntry is one ranked query.
type PopularEntry struct {
	Query string `json:"query"`
	Count int    `json:"count,omitempty"`
}

// Source records which path produced a Result.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceCache    Source = "cache"
)

// Result is what one fetch cycle yields. Popular is nil when the lookup
// carried no popular list (the fallback endpoint never does).
type Result struct {
	Query       string
	Suggestions []Suggestion
	Popular     []string
	Source      Source
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
