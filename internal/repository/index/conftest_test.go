package index

import (
	"context"

	"github.com/Toolenaar/decky/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.SetItem) []error
	jsonGetFn      func(ctx context.Context, key string) ([]byte, error)
	delFn          func(ctx context.Context, key string) (bool, error)
	searchFn       func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	searchCountFn  func(ctx context.Context, index, query string) (int, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	suggestAddFn   func(ctx context.Context, dict, term string, score float64) error
	suggestGetFn   func(ctx context.Context, dict, prefix string, limit int) ([]string, error)
	suggestDelFn   func(ctx context.Context, dict, term string) error
}

func (m *mockStore) JSONSet(ctx context.Context, key string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.SetItem) []error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return make([]error, len(items))
}

func (m *mockStore) JSONGet(ctx context.Context, key string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SuggestAdd(ctx context.Context, dict, term string, score float64) error {
	if m.suggestAddFn != nil {
		return m.suggestAddFn(ctx, dict, term, score)
	}
	return nil
}

func (m *mockStore) SuggestGet(ctx context.Context, dict, prefix string, limit int) ([]string, error) {
	if m.suggestGetFn != nil {
		return m.suggestGetFn(ctx, dict, prefix, limit)
	}
	return nil, nil
}

func (m *mockStore) SuggestDel(ctx context.Context, dict, term string) error {
	if m.suggestDelFn != nil {
		return m.suggestDelFn(ctx, dict, term)
	}
	return nil
}
