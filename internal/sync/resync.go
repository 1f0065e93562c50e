package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Toolenaar/decky/internal/domain/batch"
	"github.com/Toolenaar/decky/internal/domain/card"
)

// DefaultResyncPageSize is used when ResyncOptions leaves PageSize zero.
const DefaultResyncPageSize = 500

// ResyncOptions tunes a full resync run.
type ResyncOptions struct {
	// CleanStart drops and recreates the index before syncing.
	CleanStart bool
	// PageSize is the catalog scan page size.
	PageSize int
	// Cursor resumes the scan after a previous run's last synced record.
	Cursor card.Cursor
}

// ResyncReport summarizes a full resync run.
type ResyncReport struct {
	Total      int
	Successful int
	Failed     int
	Pages      int
	// FailedPages counts pages whose bulk write reported failures.
	FailedPages int
	// Cursor is the last page's final (name, uuid) position, usable to resume.
	Cursor   card.Cursor
	Duration time.Duration
}

// Throughput returns synced cards per second.
func (r *ResyncReport) Throughput() float64 {
	secs := r.Duration.Seconds()
	if secs == 0 {
		return 0
	}
	return float64(r.Successful) / secs
}

// Ok reports whether the run completed without any failed item.
func (r *ResyncReport) Ok() bool { return r.Failed == 0 }

type resyncPage struct {
	number  int
	records []*card.SourceRecord
	cursor  card.Cursor
}

// Resync sweeps the whole catalog into the index in fixed-size pages
// ordered by name. Pages are fetched sequentially (each cursor depends on
// the previous page) while the previous page's bulk write overlaps with the
// next fetch. A failed page increments the failure counters and the run
// continues.
func (s *Service) Resync(ctx context.Context, opts ResyncOptions) (*ResyncReport, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultResyncPageSize
	}

	start := time.Now()
	report := &ResyncReport{Cursor: opts.Cursor}

	if opts.CleanStart {
		s.logger.Info("recreating index")
		if err := s.index.RecreateIndex(ctx); err != nil {
			return nil, fmt.Errorf("recreate index: %w", err)
		}
	} else {
		if err := s.index.EnsureIndex(ctx); err != nil {
			return nil, fmt.Errorf("ensure index: %w", err)
		}
	}

	total, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count catalog: %w", err)
	}
	report.Total = total
	s.logger.Info("starting full resync",
		zap.Int("total", total),
		zap.Int("page_size", opts.PageSize),
		zap.Bool("clean", opts.CleanStart),
		zap.Stringer("cursor", opts.Cursor))

	pages := make(chan resyncPage, 1)
	g, gctx := errgroup.WithContext(ctx)

	// Fetcher: sequential cursor pagination.
	g.Go(func() error {
		defer close(pages)
		cursor := opts.Cursor
		number := 0
		for {
			records, next, err := s.catalog.ScanPage(gctx, cursor, opts.PageSize)
			if err != nil {
				return fmt.Errorf("scan page after %q: %w", cursor, err)
			}
			if len(records) == 0 {
				return nil
			}
			number++
			last := records[len(records)-1]
			page := resyncPage{
				number:  number,
				records: records,
				cursor:  card.Cursor{Name: last.Name, UUID: last.Identity()},
			}
			select {
			case pages <- page:
			case <-gctx.Done():
				return gctx.Err()
			}
			if next.IsZero() {
				return nil
			}
			cursor = next
		}
	})

	// Writer: bulk-upserts pages as they arrive, continue-on-error.
	g.Go(func() error {
		for page := range pages {
			results := s.BulkUpsert(gctx, page.records)
			ok, failed := batch.Count(results)

			report.Pages++
			report.Successful += ok
			report.Failed += failed
			report.Cursor = page.cursor
			if failed > 0 {
				report.FailedPages++
				s.logger.Warn("resync page had failures",
					zap.Int("page", page.number),
					zap.Int("failed", failed),
					zap.Stringer("cursor", page.cursor))
				logItemFailures(s.logger, results)
			}

			s.logger.Info("resync page done",
				zap.Int("page", page.number),
				zap.Int("synced", ok),
				zap.Int("progress", report.Successful+report.Failed),
				zap.Int("total", report.Total))

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	report.Duration = time.Since(start)
	s.logger.Info("full resync complete",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration),
		zap.Float64("cards_per_second", report.Throughput()))
	return report, nil
}

func logItemFailures(logger *zap.Logger, results []batch.Result) {
	for _, r := range results {
		if r.Status() == batch.StatusError {
			logger.Warn("card sync failed",
				zap.String("card", r.ID()),
				zap.Error(r.Err()))
		}
	}
}

// Validate compares catalog and index counts and spot-checks a sample of
// catalog records for presence in the index. It never mutates either side.
func (s *Service) Validate(ctx context.Context, sampleSize int) (*ValidationReport, error) {
	catalogCount, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count catalog: %w", err)
	}
	indexCount, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}

	report := &ValidationReport{
		CatalogCount: catalogCount,
		IndexCount:   indexCount,
	}

	if sampleSize > 0 {
		records, _, err := s.catalog.ScanPage(ctx, card.Cursor{}, sampleSize)
		if err != nil {
			return nil, fmt.Errorf("sample catalog: %w", err)
		}
		for _, rec := range records {
			report.Sampled++
			if _, err := s.index.Get(ctx, rec.Identity()); err != nil {
				report.Missing = append(report.Missing, rec.Identity())
			}
		}
	}

	return report, nil
}

// ValidationReport is the outcome of a sync validation pass.
type ValidationReport struct {
	CatalogCount int
	IndexCount   int
	Sampled      int
	Missing      []string
}

// Valid reports whether counts match and no sampled record was missing.
func (r *ValidationReport) Valid() bool {
	return r.CatalogCount == r.IndexCount && len(r.Missing) == 0
}
