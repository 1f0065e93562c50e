// Package sync keeps the search replica consistent with the canonical
// catalog: event-driven single-card sync, administrative bulk sync, drift
// reconciliation and the resumable full resync.
package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/domain/batch"
	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/metrics"
	"github.com/Toolenaar/decky/internal/transform"
)

// indexer is the consumer interface over the index repository (ISP).
type indexer interface {
	EnsureIndex(ctx context.Context) error
	RecreateIndex(ctx context.Context) error
	Upsert(ctx context.Context, doc *card.Document) error
	BulkUpsert(ctx context.Context, docs []*card.Document) []batch.Result
	Delete(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*card.Document, error)
	Count(ctx context.Context) (int, error)
	AddSuggestion(ctx context.Context, name string, score float64) error
	RemoveSuggestion(ctx context.Context, name string) error
	NameCount(ctx context.Context, name string) (int, error)
}

// catalog is the consumer interface over the canonical store.
type catalog interface {
	Get(ctx context.Context, uuid string) (*card.SourceRecord, error)
	ScanPage(ctx context.Context, cursor card.Cursor, limit int) ([]*card.SourceRecord, card.Cursor, error)
	Count(ctx context.Context) (int, error)
}

// Service is the synchronization orchestrator.
type Service struct {
	index   indexer
	catalog catalog
	logger  *zap.Logger
}

// New creates a sync service.
func New(index indexer, cat catalog, logger *zap.Logger) *Service {
	return &Service{index: index, catalog: cat, logger: logger}
}

// UpsertOne transforms a record and writes it through to the index under
// its uuid. Overwrite semantics: idempotent, last write wins.
func (s *Service) UpsertOne(ctx context.Context, src *card.SourceRecord, id string) error {
	doc, err := transform.Transform(src, id)
	if err != nil {
		metrics.SyncDocumentsTotal.WithLabelValues("upsert", "error").Inc()
		return fmt.Errorf("transform %s: %w", id, err)
	}
	if err := s.index.Upsert(ctx, doc); err != nil {
		metrics.SyncDocumentsTotal.WithLabelValues("upsert", "error").Inc()
		return err
	}
	metrics.SyncDocumentsTotal.WithLabelValues("upsert", "success").Inc()

	// Autocomplete dictionary maintenance is best-effort; a failure never
	// fails the sync itself.
	if err := s.index.AddSuggestion(ctx, doc.Name, doc.PopularityScore); err != nil {
		s.logger.Warn("suggestion upsert failed",
			zap.String("card", doc.UUID),
			zap.Error(err))
	}
	return nil
}

// DeleteOne removes a document from the index. Deleting an id that is not
// indexed is success.
func (s *Service) DeleteOne(ctx context.Context, id string) error {
	existing, _ := s.index.Get(ctx, id)

	found, err := s.index.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug("delete for unindexed card", zap.String("card", id))
		return nil
	}

	// Prune the autocomplete entry once the last printing carrying this
	// name is gone. Best-effort like AddSuggestion.
	if existing != nil && existing.Name != "" {
		n, err := s.index.NameCount(ctx, existing.Name)
		if err != nil {
			s.logger.Warn("suggestion prune check failed",
				zap.String("card", id),
				zap.Error(err))
		} else if n == 0 {
			if err := s.index.RemoveSuggestion(ctx, existing.Name); err != nil {
				s.logger.Warn("suggestion prune failed",
					zap.String("name", existing.Name),
					zap.Error(err))
			}
		}
	}
	return nil
}

// BulkUpsert transforms all records and issues one batched write. Per-item
// failures are collected into the results, never raised, and never abort
// sibling items.
func (s *Service) BulkUpsert(ctx context.Context, records []*card.SourceRecord) []batch.Result {
	results := make([]batch.Result, 0, len(records))
	docs := make([]*card.Document, 0, len(records))

	var failed []batch.Result
	for _, rec := range records {
		doc, err := transform.Transform(rec, "")
		if err != nil {
			failed = append(failed, batch.NewError(rec.Identity(), err))
			metrics.SyncDocumentsTotal.WithLabelValues("bulk", "error").Inc()
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) > 0 {
		results = append(results, s.index.BulkUpsert(ctx, docs)...)
		for i, res := range results {
			if res.Status() != batch.StatusOK {
				metrics.SyncDocumentsTotal.WithLabelValues("bulk", "error").Inc()
				continue
			}
			metrics.SyncDocumentsTotal.WithLabelValues("bulk", "success").Inc()
			if err := s.index.AddSuggestion(ctx, docs[i].Name, docs[i].PopularityScore); err != nil {
				s.logger.Warn("suggestion upsert failed",
					zap.String("card", docs[i].UUID),
					zap.Error(err))
			}
		}
	}
	return append(results, failed...)
}

// SyncByIDs is the administrative bulk entry point: fetch the given records
// from the catalog and bulk-sync them, reporting aggregate counts. Missing
// catalog records count as failed.
func (s *Service) SyncByIDs(ctx context.Context, ids []string) (synced, failed int) {
	records := make([]*card.SourceRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.catalog.Get(ctx, id)
		if err != nil {
			s.logger.Warn("catalog fetch failed",
				zap.String("card", id),
				zap.Error(err))
			failed++
			continue
		}
		records = append(records, rec)
	}

	ok, bad := batch.Count(s.BulkUpsert(ctx, records))
	return ok, failed + bad
}

// ReconcileByID fetches the catalog record and reconciles its index copy.
func (s *Service) ReconcileByID(ctx context.Context, id string) (bool, error) {
	rec, err := s.catalog.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("catalog fetch %s: %w", id, err)
	}
	return s.Reconcile(ctx, rec, id)
}

// Reconcile checks whether the indexed document still matches the catalog
// record and re-syncs it when it drifted. Returns true when a write was
// needed. The comparison covers a fixed field subset plus the image map;
// fields outside that subset can drift silently.
func (s *Service) Reconcile(ctx context.Context, src *card.SourceRecord, id string) (bool, error) {
	expected, err := transform.Transform(src, id)
	if err != nil {
		return false, fmt.Errorf("transform %s: %w", id, err)
	}

	existing, err := s.index.Get(ctx, expected.UUID)
	if err == nil && inSync(expected, existing, src) {
		return false, nil
	}
	// A missing or undecodable indexed document is simply out of sync.

	if err := s.index.Upsert(ctx, expected); err != nil {
		return false, err
	}
	s.logger.Info("reconciled card", zap.String("card", expected.UUID))
	return true, nil
}
