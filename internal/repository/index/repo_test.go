package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Toolenaar/decky/internal/db"
	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/batch"
	"github.com/Toolenaar/decky/internal/domain/card"
)

func TestUpsert_KeyAndPayload(t *testing.T) {
	var gotKey string
	var gotData []byte
	store := &mockStore{
		jsonSetFn: func(_ context.Context, key string, data []byte) error {
			gotKey = key
			gotData = data
			return nil
		},
	}
	repo := New(store, "cards", 0)

	doc := &card.Document{UUID: "uuid-1", Name: "Lightning Bolt"}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "card:uuid-1" {
		t.Errorf("key = %q", gotKey)
	}

	var decoded card.Document
	if err := json.Unmarshal(gotData, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Name != "Lightning Bolt" {
		t.Errorf("payload name = %q", decoded.Name)
	}
}

func TestUpsert_RetriesTransientFailure(t *testing.T) {
	calls := 0
	store := &mockStore{
		jsonSetFn: func(_ context.Context, _ string, _ []byte) error {
			calls++
			if calls < 3 {
				return errors.New("connection reset")
			}
			return nil
		},
	}
	repo := New(store, "cards", 0)

	if err := repo.Upsert(context.Background(), &card.Document{UUID: "u"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestBulkUpsert_PartialFailure(t *testing.T) {
	store := &mockStore{
		jsonSetMultiFn: func(_ context.Context, items []db.SetItem) []error {
			errs := make([]error, len(items))
			for i, item := range items {
				if item.Key == "card:bad" {
					errs[i] = errors.New("document rejected")
				}
			}
			return errs
		},
	}
	repo := New(store, "cards", 0)

	docs := []*card.Document{
		{UUID: "a"}, {UUID: "bad"}, {UUID: "c"},
	}
	results := repo.BulkUpsert(context.Background(), docs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	ok, failed := batch.Count(results)
	if ok != 2 || failed != 1 {
		t.Errorf("ok=%d failed=%d, want 2/1", ok, failed)
	}
	if results[1].Status() != batch.StatusError {
		t.Errorf("middle item should have failed: %+v", results[1])
	}
	if results[0].Status() != batch.StatusOK || results[2].Status() != batch.StatusOK {
		t.Error("siblings of a failed item must still succeed")
	}
}

func TestDelete_AbsentIsSuccess(t *testing.T) {
	store := &mockStore{
		delFn: func(_ context.Context, _ string) (bool, error) {
			return false, nil
		},
	}
	repo := New(store, "cards", 0)

	found, err := repo.Delete(context.Background(), "missing")
	if err != nil {
		t.Fatalf("deleting an absent document must not error: %v", err)
	}
	if found {
		t.Error("found = true for an absent document")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{}, "cards", 0)
	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGet_UnwrapsJSONPathArray(t *testing.T) {
	store := &mockStore{
		jsonGetFn: func(_ context.Context, _ string) ([]byte, error) {
			return []byte(`[{"uuid":"u-1","name":"Sol Ring"}]`), nil
		},
	}
	repo := New(store, "cards", 0)

	doc, err := repo.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "Sol Ring" {
		t.Errorf("Name = %q", doc.Name)
	}
}

func TestSearch_DecodesHitsAndSkipsBadPayloads(t *testing.T) {
	store := &mockStore{
		searchFn: func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
			if q.Index != "cards" {
				return nil, fmt.Errorf("unexpected index %q", q.Index)
			}
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "card:a", Score: 2.5, Raw: []byte(`{"uuid":"a","name":"A"}`)},
					{Key: "card:b", Score: 1.0, Raw: []byte(`{broken`)},
				},
			}, nil
		},
	}
	repo := New(store, "cards", 0)

	page, err := repo.Search(context.Background(), &db.Query{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total = %d", page.Total)
	}
	if len(page.Hits) != 1 {
		t.Fatalf("expected 1 decodable hit, got %d", len(page.Hits))
	}
	if page.Hits[0].Document.UUID != "a" || page.Hits[0].Score != 2.5 {
		t.Errorf("hit = %+v", page.Hits[0])
	}
}

func TestEnsureIndex(t *testing.T) {
	created := false
	store := &mockStore{
		indexExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			created = true
			if def.Name != "cards" {
				t.Errorf("index name = %q", def.Name)
			}
			return nil
		},
	}
	repo := New(store, "cards", 1536)
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected index creation")
	}

	// Existing index is left alone.
	created = false
	store.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("existing index must not be recreated")
	}
}

func TestNameCount_ExactPhraseQuery(t *testing.T) {
	var gotQuery string
	store := &mockStore{
		searchCountFn: func(_ context.Context, _ string, query string) (int, error) {
			gotQuery = query
			return 3, nil
		},
	}
	repo := New(store, "cards", 0)

	n, err := repo.NameCount(context.Background(), "Giant Growth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
	if gotQuery != `@name:"Giant Growth"` {
		t.Errorf("query = %s", gotQuery)
	}

	// Empty name short-circuits without a query.
	if n, err := repo.NameCount(context.Background(), ""); err != nil || n != 0 {
		t.Errorf("empty name: n=%d err=%v", n, err)
	}
}

func TestCardIndexDefinition(t *testing.T) {
	def := cardIndexDefinition("cards", 1536)

	aliases := map[string]db.IndexFieldType{}
	for _, f := range def.Fields {
		aliases[f.Alias] = f.Type
	}

	wantTags := []string{"uuid", "colors", "color_identity", "synergy_themes", "deck_archetypes", "legality_commander"}
	for _, alias := range wantTags {
		if aliases[alias] != db.IndexFieldTag {
			t.Errorf("%s should be a TAG field, got %q", alias, aliases[alias])
		}
	}
	if aliases["mana_value"] != db.IndexFieldNumeric {
		t.Errorf("mana_value should be NUMERIC")
	}
	if aliases["ai_embedding"] != db.IndexFieldVector {
		t.Errorf("ai_embedding should be VECTOR")
	}

	// Zero dimension disables the vector field entirely.
	def = cardIndexDefinition("cards", 0)
	for _, f := range def.Fields {
		if f.Type == db.IndexFieldVector {
			t.Error("vector field present with dim 0")
		}
	}
}
