// Package request holds the wire-level search and suggestion request types.
// Requests are decoded straight from JSON and validated eagerly, before any
// index call is made.
package request

import (
	"fmt"

	"github.com/Toolenaar/decky/internal/domain"
)

// Pagination and sizing limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// SuggestionPoolSize is how many raw hits a suggestion query retrieves
	// before in-process ranking trims them.
	SuggestionPoolSize = 100
)

// Search is a filtered card search request.
type Search struct {
	Filters    *Filters      `json:"filters,omitempty"`
	Sort       []SortOption  `json:"sort,omitempty"`
	Pagination *Pagination   `json:"pagination,omitempty"`
	Vector     *VectorClause `json:"vector,omitempty"`
}

// Filters groups the exact-match facets, numeric ranges, and full-text
// clauses of a search. Name and Text are scoring clauses; everything else
// is restrictive.
type Filters struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`

	Colors        []string `json:"colors,omitempty"`
	ColorIdentity []string `json:"color_identity,omitempty"`
	Types         []string `json:"types,omitempty"`
	Subtypes      []string `json:"subtypes,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Rarity        []string `json:"rarity,omitempty"`
	Sets          []string `json:"sets,omitempty"`

	// Formats maps format name to required legality status,
	// e.g. {"modern": "legal"}. Each entry becomes its own clause.
	Formats map[string]string `json:"formats,omitempty"`

	ManaValue *NumericRange `json:"mana_value,omitempty"`
	Price     *PriceRange   `json:"price,omitempty"`

	SynergyThemes  []string `json:"synergy_themes,omitempty"`
	DeckArchetypes []string `json:"deck_archetypes,omitempty"`
}

// NumericRange is an optionally open-ended numeric window.
type NumericRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// PriceRange is a NumericRange scoped to a price currency.
type PriceRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"` // usd (default), eur, tix
}

// SortOption orders results by a single field.
type SortOption struct {
	Field string `json:"field"`
	Order string `json:"order"` // asc or desc
}

// Pagination is an offset window into the result set.
type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

// VectorClause requests similarity scoring, either by a raw embedding or by
// text to be embedded server-side.
type VectorClause struct {
	Embedding []float32 `json:"embedding,omitempty"`
	SimilarTo string    `json:"similar_to,omitempty"`
}

var sortFields = map[string]bool{
	"name":             true,
	"mana_value":       true,
	"edhrec_rank":      true,
	"release_date":     true,
	"popularity_score": true,
}

var priceCurrencies = map[string]bool{"": true, "usd": true, "eur": true, "tix": true}

// Validate rejects malformed requests and applies pagination defaults.
func (s *Search) Validate() error {
	for _, so := range s.Sort {
		if !sortFields[so.Field] {
			return fmt.Errorf("%w: unsupported sort field %q", domain.ErrInvalidRequest, so.Field)
		}
		if so.Order != "asc" && so.Order != "desc" {
			return fmt.Errorf("%w: sort order must be asc or desc", domain.ErrInvalidRequest)
		}
	}
	if s.Pagination == nil {
		s.Pagination = &Pagination{From: 0, Size: DefaultPageSize}
	}
	if s.Pagination.From < 0 {
		return fmt.Errorf("%w: pagination.from must be >= 0", domain.ErrInvalidRequest)
	}
	if s.Pagination.Size < 0 || s.Pagination.Size > MaxPageSize {
		return fmt.Errorf("%w: pagination.size must be between 0 and %d", domain.ErrInvalidRequest, MaxPageSize)
	}
	if s.Pagination.Size == 0 {
		// An omitted size decodes to zero; treat it like a nil Pagination.
		s.Pagination.Size = DefaultPageSize
	}
	if s.Filters != nil {
		if s.Filters.Price != nil && !priceCurrencies[s.Filters.Price.Currency] {
			return fmt.Errorf("%w: unsupported price currency %q", domain.ErrInvalidRequest, s.Filters.Price.Currency)
		}
		for format, status := range s.Filters.Formats {
			if format == "" || status == "" {
				return fmt.Errorf("%w: format filter entries need both format and status", domain.ErrInvalidRequest)
			}
		}
	}
	if s.Vector != nil && len(s.Vector.Embedding) == 0 && s.Vector.SimilarTo == "" {
		return fmt.Errorf("%w: vector clause needs an embedding or similar_to text", domain.ErrInvalidRequest)
	}
	return nil
}

// Suggestion is a deck-building suggestion request.
type Suggestion struct {
	Format        string   `json:"format"`
	Commander     string   `json:"commander,omitempty"`
	Theme         string   `json:"theme,omitempty"`
	Strategy      string   `json:"strategy,omitempty"`
	Budget        float64  `json:"budget,omitempty"`
	ColorIdentity []string `json:"color_identity,omitempty"`
	ExistingCards []string `json:"existing_cards,omitempty"`
}

var strategies = map[string]bool{
	"": true, "aggro": true, "control": true, "combo": true, "midrange": true, "ramp": true,
}

// Validate rejects suggestion requests missing the mandatory format or
// carrying an unknown strategy.
func (s *Suggestion) Validate() error {
	if s.Format == "" {
		return fmt.Errorf("%w: format is required", domain.ErrInvalidRequest)
	}
	if !strategies[s.Strategy] {
		return fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidRequest, s.Strategy)
	}
	if s.Budget < 0 {
		return fmt.Errorf("%w: budget must be >= 0", domain.ErrInvalidRequest)
	}
	return nil
}
