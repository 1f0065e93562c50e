// Package index is the search-replica repository: card documents stored as
// JSON in the index service, queried through compiled descriptors.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Toolenaar/decky/internal/db"
	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/batch"
	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/domain/search/result"
)

// Bounded retry for idempotent single-document writes.
const (
	retryAttempts = 3
	retryBaseWait = 100 * time.Millisecond
)

// store is the consumer interface for the index service (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.SetItem) []error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) (bool, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SuggestAdd(ctx context.Context, dict, term string, score float64) error
	SuggestGet(ctx context.Context, dict, prefix string, limit int) ([]string, error)
	SuggestDel(ctx context.Context, dict, term string) error
}

// Repo implements the index-side card repository.
type Repo struct {
	store     store
	indexName string
	vectorDim int
}

// New creates an index repository. vectorDim sizes the similarity field in
// the index schema; zero disables vector search.
func New(s store, indexName string, vectorDim int) *Repo {
	return &Repo{store: s, indexName: indexName, vectorDim: vectorDim}
}

// IndexName returns the FT index this repository queries.
func (r *Repo) IndexName() string { return r.indexName }

// EnsureIndex creates the card index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, cardIndexDefinition(r.indexName, r.vectorDim)); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// RecreateIndex drops the index with its documents and builds it afresh.
func (r *Repo) RecreateIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.indexName, err)
	}
	if err := r.store.CreateIndex(ctx, cardIndexDefinition(r.indexName, r.vectorDim)); err != nil {
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// Upsert writes a document under its uuid, overwriting any previous version.
func (r *Repo) Upsert(ctx context.Context, doc *card.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", doc.UUID, err)
	}
	key := KeyPrefix + doc.UUID
	if err := r.withRetry(ctx, func() error {
		return r.store.JSONSet(ctx, key, data)
	}); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// BulkUpsert writes all documents in one pipelined call and reports per-item
// outcomes; a failed item never aborts its siblings.
func (r *Repo) BulkUpsert(ctx context.Context, docs []*card.Document) []batch.Result {
	results := make([]batch.Result, len(docs))
	items := make([]db.SetItem, 0, len(docs))
	itemIdx := make([]int, 0, len(docs))

	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			results[i] = batch.NewError(doc.UUID, fmt.Errorf("marshal document: %w", err))
			continue
		}
		items = append(items, db.SetItem{Key: KeyPrefix + doc.UUID, Data: data})
		itemIdx = append(itemIdx, i)
	}

	for j, err := range r.store.JSONSetMulti(ctx, items) {
		i := itemIdx[j]
		if err != nil {
			results[i] = batch.NewError(docs[i].UUID, err)
		} else {
			results[i] = batch.NewOK(docs[i].UUID)
		}
	}
	return results
}

// Delete removes a document by uuid. Returns false when it was already
// absent; absence is success, not an error.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	if err := r.withRetry(ctx, func() error {
		var err error
		found, err = r.store.Del(ctx, KeyPrefix+id)
		return err
	}); err != nil {
		return false, fmt.Errorf("del %s: %w", id, err)
	}
	return found, nil
}

// Get returns the indexed document for a uuid.
func (r *Repo) Get(ctx context.Context, id string) (*card.Document, error) {
	raw, err := r.store.JSONGet(ctx, KeyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", id, err)
	}
	return decodeDocument(raw)
}

// Search executes a compiled query and decodes the hits.
func (r *Repo) Search(ctx context.Context, q *db.Query) (*result.Page, error) {
	if q.Index == "" {
		q.Index = r.indexName
	}
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", q.Index, err)
	}

	page := &result.Page{Total: res.Total, Hits: make([]result.Hit, 0, len(res.Entries))}
	for _, entry := range res.Entries {
		doc, err := decodeDocument(entry.Raw)
		if err != nil {
			// A hit with an undecodable payload is dropped rather than
			// failing the page.
			continue
		}
		page.Hits = append(page.Hits, result.Hit{Document: doc, Score: entry.Score})
	}
	return page, nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.indexName, err)
	}
	return n, nil
}

// Suggest returns autocomplete candidates for a card-name prefix.
func (r *Repo) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	terms, err := r.store.SuggestGet(ctx, SuggestDict, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", prefix, err)
	}
	return terms, nil
}

// AddSuggestion upserts a card name into the autocomplete dictionary.
func (r *Repo) AddSuggestion(ctx context.Context, name string, score float64) error {
	if name == "" {
		return nil
	}
	return r.store.SuggestAdd(ctx, SuggestDict, name, score)
}

// RemoveSuggestion drops a card name from the autocomplete dictionary.
func (r *Repo) RemoveSuggestion(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return r.store.SuggestDel(ctx, SuggestDict, name)
}

// NameCount returns how many indexed printings match the name as an exact
// phrase. Superstring names can inflate the count, which only ever keeps a
// suggestion alive longer than strictly needed.
func (r *Repo) NameCount(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	n, err := r.store.SearchCount(ctx, r.indexName, fmt.Sprintf("@name:%q", name))
	if err != nil {
		return 0, fmt.Errorf("count name %q: %w", name, err)
	}
	return n, nil
}

func (r *Repo) withRetry(ctx context.Context, fn func() error) error {
	var err error
	wait := retryBaseWait
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func decodeDocument(raw []byte) (*card.Document, error) {
	// JSON.GET with a $ path wraps the document in a one-element array.
	if len(raw) > 0 && raw[0] == '[' {
		var docs []*card.Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if len(docs) == 0 {
			return nil, domain.ErrDocumentNotFound
		}
		return docs[0], nil
	}

	var doc card.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
