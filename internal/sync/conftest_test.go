package sync

import (
	"context"
	"testing"

	"github.com/Toolenaar/decky/internal/domain/batch"
	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/transform"
)

func transformForTest(t *testing.T, src *card.SourceRecord) (*card.Document, error) {
	t.Helper()
	doc, err := transform.Transform(src, "")
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	return doc, err
}

// mockIndexer implements the indexer consumer interface for tests.
type mockIndexer struct {
	ensureIndexFn      func(ctx context.Context) error
	recreateIndexFn    func(ctx context.Context) error
	upsertFn           func(ctx context.Context, doc *card.Document) error
	bulkUpsertFn       func(ctx context.Context, docs []*card.Document) []batch.Result
	deleteFn           func(ctx context.Context, id string) (bool, error)
	getFn              func(ctx context.Context, id string) (*card.Document, error)
	countFn            func(ctx context.Context) (int, error)
	addSuggestionFn    func(ctx context.Context, name string, score float64) error
	removeSuggestionFn func(ctx context.Context, name string) error
	nameCountFn        func(ctx context.Context, name string) (int, error)
}

func (m *mockIndexer) EnsureIndex(ctx context.Context) error {
	if m.ensureIndexFn != nil {
		return m.ensureIndexFn(ctx)
	}
	return nil
}

func (m *mockIndexer) RecreateIndex(ctx context.Context) error {
	if m.recreateIndexFn != nil {
		return m.recreateIndexFn(ctx)
	}
	return nil
}

func (m *mockIndexer) Upsert(ctx context.Context, doc *card.Document) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, doc)
	}
	return nil
}

func (m *mockIndexer) BulkUpsert(ctx context.Context, docs []*card.Document) []batch.Result {
	if m.bulkUpsertFn != nil {
		return m.bulkUpsertFn(ctx, docs)
	}
	results := make([]batch.Result, len(docs))
	for i, d := range docs {
		results[i] = batch.NewOK(d.UUID)
	}
	return results
}

func (m *mockIndexer) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

func (m *mockIndexer) Get(ctx context.Context, id string) (*card.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockIndexer) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockIndexer) AddSuggestion(ctx context.Context, name string, score float64) error {
	if m.addSuggestionFn != nil {
		return m.addSuggestionFn(ctx, name, score)
	}
	return nil
}

func (m *mockIndexer) RemoveSuggestion(ctx context.Context, name string) error {
	if m.removeSuggestionFn != nil {
		return m.removeSuggestionFn(ctx, name)
	}
	return nil
}

func (m *mockIndexer) NameCount(ctx context.Context, name string) (int, error) {
	if m.nameCountFn != nil {
		return m.nameCountFn(ctx, name)
	}
	return 0, nil
}

// mockCatalog implements the catalog consumer interface for tests.
type mockCatalog struct {
	getFn      func(ctx context.Context, uuid string) (*card.SourceRecord, error)
	scanPageFn func(ctx context.Context, cursor card.Cursor, limit int) ([]*card.SourceRecord, card.Cursor, error)
	countFn    func(ctx context.Context) (int, error)
}

func (m *mockCatalog) Get(ctx context.Context, uuid string) (*card.SourceRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, uuid)
	}
	return nil, nil
}

func (m *mockCatalog) ScanPage(ctx context.Context, cursor card.Cursor, limit int) ([]*card.SourceRecord, card.Cursor, error) {
	if m.scanPageFn != nil {
		return m.scanPageFn(ctx, cursor, limit)
	}
	return nil, card.Cursor{}, nil
}

func (m *mockCatalog) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}
