// Package db defines the search-index service boundary. The card index is
// an external collaborator; this package specifies the operations the rest
// of the system needs from it, and internal/db/redis implements them over
// RediSearch.
package db

import (
	"context"
	"time"
)

// Store is the index service facade. Consumers depend on the narrow
// sub-interfaces, not on Store itself.
type Store interface {
	Pinger
	DocumentStore
	IndexAdmin
	Searcher
	Suggester
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks index service connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetItem is one key+document pair for a pipelined bulk write.
type SetItem struct {
	Key  string
	Data []byte
}

// DocumentStore provides JSON document storage keyed by document id.
// All writes are idempotent overwrites; Del of an absent key succeeds.
type DocumentStore interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	// JSONSetMulti writes all items in one round-trip and reports outcomes
	// per item; a failed item never aborts its siblings.
	JSONSetMulti(ctx context.Context, items []SetItem) []error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	// Del removes a key. Returns false when the key was already absent;
	// absence is not an error.
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexAdmin provides index lifecycle operations.
type IndexAdmin interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher executes compiled queries.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Suggester maintains and queries the prefix-completion dictionary.
type Suggester interface {
	SuggestAdd(ctx context.Context, dict, term string, score float64) error
	SuggestGet(ctx context.Context, dict, prefix string, limit int) ([]string, error)
	SuggestDel(ctx context.Context, dict, term string) error
}
