package searchapi

import (
	"context"

	"github.com/Toolenaar/decky/internal/db"
	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/search/result"
)

// mockIndex is a function-field test double for the index repository.
type mockIndex struct {
	searchFn  func(ctx context.Context, q *db.Query) (*result.Page, error)
	suggestFn func(ctx context.Context, prefix string, limit int) ([]string, error)
}

func (m *mockIndex) Search(ctx context.Context, q *db.Query) (*result.Page, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &result.Page{}, nil
}

func (m *mockIndex) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, prefix, limit)
	}
	return nil, nil
}

// mockEmbedder is a function-field test double for the embedding provider.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}, nil
}
