package chi

import (
	"context"

	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/domain/search/request"
	"github.com/Toolenaar/decky/internal/domain/search/result"
	"github.com/Toolenaar/decky/internal/sync"
)

// mockSearcher is a function-field test double for the search service.
type mockSearcher struct {
	searchFn       func(ctx context.Context, req *request.Search) (*result.Page, error)
	suggestFn      func(ctx context.Context, req *request.Suggestion) ([]result.Suggestion, error)
	autocompleteFn func(ctx context.Context, prefix string, limit int) ([]string, error)
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Search) (*result.Page, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &result.Page{}, nil
}

func (m *mockSearcher) Suggest(ctx context.Context, req *request.Suggestion) ([]result.Suggestion, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, req)
	}
	return nil, nil
}

func (m *mockSearcher) Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	if m.autocompleteFn != nil {
		return m.autocompleteFn(ctx, prefix, limit)
	}
	return nil, nil
}

// mockCardReader is a function-field test double for single card reads.
type mockCardReader struct {
	getFn func(ctx context.Context, id string) (*card.Document, error)
}

func (m *mockCardReader) Get(ctx context.Context, id string) (*card.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &card.Document{UUID: id}, nil
}

// mockSyncer is a function-field test double for the sync service.
type mockSyncer struct {
	syncByIDsFn     func(ctx context.Context, ids []string) (int, int)
	reconcileByIDFn func(ctx context.Context, id string) (bool, error)
	validateFn      func(ctx context.Context, sampleSize int) (*sync.ValidationReport, error)
}

func (m *mockSyncer) SyncByIDs(ctx context.Context, ids []string) (int, int) {
	if m.syncByIDsFn != nil {
		return m.syncByIDsFn(ctx, ids)
	}
	return len(ids), 0
}

func (m *mockSyncer) ReconcileByID(ctx context.Context, id string) (bool, error) {
	if m.reconcileByIDFn != nil {
		return m.reconcileByIDFn(ctx, id)
	}
	return false, nil
}

func (m *mockSyncer) Validate(ctx context.Context, sampleSize int) (*sync.ValidationReport, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, sampleSize)
	}
	return &sync.ValidationReport{}, nil
}

// mockPinger is a function-field test double for index connectivity.
type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}
