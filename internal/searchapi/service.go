// Package searchapi executes validated search, suggestion, and autocomplete
// requests against the card index. It resolves similarity text into vectors,
// compiles requests via the query package, and enriches responses with
// page-scoped facet aggregations.
package searchapi

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/db"
	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/search/request"
	"github.com/Toolenaar/decky/internal/domain/search/result"
	"github.com/Toolenaar/decky/internal/metrics"
	"github.com/Toolenaar/decky/internal/query"
)

// Autocomplete sizing limits.
const (
	defaultAutocompleteLimit = 10
	maxAutocompleteLimit     = 25
)

// indexRepo is the slice of the index repository this service needs.
type indexRepo interface {
	Search(ctx context.Context, q *db.Query) (*result.Page, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
}

// Service executes card search requests.
type Service struct {
	index     indexRepo
	embed     domain.Embedder // nil when no provider is configured
	indexName string
	logger    *zap.Logger
}

// New creates a search service. embed may be nil; similarity queries then fail
// with domain.ErrEmbeddingNotConfigured.
func New(index indexRepo, embed domain.Embedder, indexName string, logger *zap.Logger) *Service {
	return &Service{index: index, embed: embed, indexName: indexName, logger: logger}
}

// Search validates and executes a filtered card search.
func (s *Service) Search(ctx context.Context, req *request.Search) (*result.Page, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("search", "invalid").Inc()
		return nil, err
	}

	if err := s.resolveVector(ctx, req); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, err
	}

	q, err := query.CompileSearch(s.indexName, req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("search", "invalid").Inc()
		return nil, err
	}

	page, err := s.index.Search(ctx, q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("execute search: %w", err)
	}

	page.Aggregations = aggregate(page.Hits)

	metrics.SearchRequestsTotal.WithLabelValues("search", "success").Inc()
	metrics.SearchRequestDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	return page, nil
}

// resolveVector embeds similar_to text into the vector clause when no raw
// embedding was supplied.
func (s *Service) resolveVector(ctx context.Context, req *request.Search) error {
	v := req.Vector
	if v == nil || len(v.Embedding) > 0 || v.SimilarTo == "" {
		return nil
	}
	if s.embed == nil {
		return fmt.Errorf("similar_to query: %w", domain.ErrEmbeddingNotConfigured)
	}

	res, err := s.embed.Embed(ctx, v.SimilarTo)
	if err != nil {
		return fmt.Errorf("embed similar_to text: %w", err)
	}
	v.Embedding = res.Embedding

	s.logger.Debug("embedded similarity text",
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("tokens", res.TotalTokens),
	)
	return nil
}

// Suggest validates and executes a deck-building suggestion request. The
// index supplies a scored candidate pool; ranking, reasons, and role
// classification happen in-process.
func (s *Service) Suggest(ctx context.Context, req *request.Suggestion) ([]result.Suggestion, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("suggestions", "invalid").Inc()
		return nil, err
	}

	q, err := query.CompileSuggestions(s.indexName, req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("suggestions", "invalid").Inc()
		return nil, err
	}

	page, err := s.index.Search(ctx, q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("suggestions", "error").Inc()
		return nil, fmt.Errorf("execute suggestion query: %w", err)
	}

	suggestions := query.Rank(page.Hits, req)

	metrics.SearchRequestsTotal.WithLabelValues("suggestions", "success").Inc()
	metrics.SearchRequestDuration.WithLabelValues("suggestions").Observe(time.Since(start).Seconds())
	return suggestions, nil
}

// Autocomplete returns fuzzy name completions for a prefix.
func (s *Service) Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: autocomplete prefix is required", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultAutocompleteLimit
	}
	if limit > maxAutocompleteLimit {
		limit = maxAutocompleteLimit
	}

	names, err := s.index.Suggest(ctx, prefix, limit)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("autocomplete", "error").Inc()
		return nil, fmt.Errorf("autocomplete: %w", err)
	}

	metrics.SearchRequestsTotal.WithLabelValues("autocomplete", "success").Inc()
	return names, nil
}

// manaCurveCap groups everything above this mana value into one bucket.
const manaCurveCap = 7

// aggregate computes facet counts over the returned page.
func aggregate(hits []result.Hit) *result.Aggregations {
	agg := &result.Aggregations{
		Colors:    make(map[string]int),
		Types:     make(map[string]int),
		Rarities:  make(map[string]int),
		ManaCurve: make(map[int]int),
	}
	for _, h := range hits {
		d := h.Document
		if d == nil {
			continue
		}
		for _, c := range d.Colors {
			agg.Colors[c]++
		}
		for _, t := range d.Types {
			agg.Types[t]++
		}
		if d.Rarity != "" {
			agg.Rarities[d.Rarity]++
		}
		bucket := int(d.ManaValue)
		if bucket > manaCurveCap {
			bucket = manaCurveCap
		}
		agg.ManaCurve[bucket]++
	}
	return agg
}
