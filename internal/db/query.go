package db

import "github.com/Toolenaar/decky/internal/domain/search/filter"

// Query is a compiled, index-agnostic query descriptor. The query package
// produces it; the driver translates it into the engine's dialect.
type Query struct {
	Index string

	// Scoring clauses contribute to relevance. With none present the
	// query matches everything (never an empty result by construction).
	Scoring []ScoringClause

	// Filters are restrictive clauses: membership only, no score impact.
	Filters filter.Expression

	// KNN, when set, adds a vector-similarity scoring component.
	KNN *KNNClause

	Offset int
	Limit  int

	// SortBy orders by a field instead of relevance. Empty means
	// score-ordered with WITHSCORES reporting.
	SortBy  string
	SortAsc bool

	// ReturnFields restricts the per-hit payload. Empty returns the
	// whole document.
	ReturnFields []string
}

// ScoringClauseKind distinguishes free-text matches from boosted tag matches.
type ScoringClauseKind int

// Scoring clause kinds.
const (
	ClauseText ScoringClauseKind = iota
	ClauseTag
)

// ScoringClause is one relevance-contributing clause. Terms within a clause
// are OR-combined; clauses are AND-combined across fields. Optional clauses
// contribute to the score without restricting membership.
type ScoringClause struct {
	Kind     ScoringClauseKind
	Field    string
	Terms    []string
	Boost    float64
	Optional bool
}

// KNNClause is the vector-similarity component of a query.
type KNNClause struct {
	Field  string
	Vector []float32
	K      int
}

// SearchResult is the raw output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key   string
	Score float64
	// Raw is the document JSON as returned by the engine.
	Raw []byte
}
