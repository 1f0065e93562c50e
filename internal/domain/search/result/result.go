// Package result holds search hit and suggestion output types.
package result

import "github.com/Toolenaar/decky/internal/domain/card"

// Hit is a single raw search hit: the indexed document plus its relevance
// score as reported by the index service.
type Hit struct {
	Document *card.Document
	Score    float64
}

// Page is a search response: hits in rank order, the total match count, and
// facet aggregations.
type Page struct {
	Hits         []Hit
	Total        int
	Aggregations *Aggregations
}

// Aggregations are the facet counts computed over a result page.
type Aggregations struct {
	Colors    map[string]int `json:"colors,omitempty"`
	Types     map[string]int `json:"types,omitempty"`
	Rarities  map[string]int `json:"rarities,omitempty"`
	ManaCurve map[int]int    `json:"mana_curve,omitempty"`
}

// Suggestion is one ranked deck-building candidate.
type Suggestion struct {
	Card *card.Document `json:"card"`

	// Score is the index relevance score (scoring clauses only).
	Score float64 `json:"score"`

	// SynergyScore is the separate additive 0-100 deck-fit score.
	SynergyScore float64 `json:"synergy_score"`

	// Reasons are human-readable qualifying signals; several may co-occur.
	Reasons []string `json:"reasons"`

	// BudgetFit is true when no budget was given or the card is at or
	// below it.
	BudgetFit bool `json:"budget_fit"`

	// RoleInDeck is the first-match role classification.
	RoleInDeck string `json:"role_in_deck"`
}
