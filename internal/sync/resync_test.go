package sync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Toolenaar/decky/internal/domain/batch"
	"github.com/Toolenaar/decky/internal/domain/card"
)

// pagedCatalog serves a fixed (name, uuid)-ordered record set in pages,
// mimicking the cursor contract of the real store.
type pagedCatalog struct {
	records []*card.SourceRecord
}

func (c *pagedCatalog) Get(_ context.Context, uuid string) (*card.SourceRecord, error) {
	for _, r := range c.records {
		if r.UUID == uuid {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (c *pagedCatalog) ScanPage(_ context.Context, cursor card.Cursor, limit int) ([]*card.SourceRecord, card.Cursor, error) {
	var page []*card.SourceRecord
	for _, r := range c.records {
		if cursor.Before(r.Name, r.UUID) {
			page = append(page, r)
		}
		if len(page) == limit {
			break
		}
	}
	var next card.Cursor
	if len(page) == limit {
		last := page[len(page)-1]
		next = card.Cursor{Name: last.Name, UUID: last.UUID}
	}
	return page, next, nil
}

func (c *pagedCatalog) Count(_ context.Context) (int, error) {
	return len(c.records), nil
}

func makeRecords(names ...string) []*card.SourceRecord {
	records := make([]*card.SourceRecord, len(names))
	for i, name := range names {
		records[i] = &card.SourceRecord{UUID: "u-" + name, Name: name}
	}
	return records
}

// recordingIndexer tracks which uuids were bulk-written.
type recordingIndexer struct {
	mockIndexer
	mu     sync.Mutex
	synced []string
}

func newRecordingIndexer(failUUIDs ...string) *recordingIndexer {
	fail := map[string]bool{}
	for _, u := range failUUIDs {
		fail[u] = true
	}
	r := &recordingIndexer{}
	r.bulkUpsertFn = func(_ context.Context, docs []*card.Document) []batch.Result {
		r.mu.Lock()
		defer r.mu.Unlock()
		results := make([]batch.Result, len(docs))
		for i, d := range docs {
			if fail[d.UUID] {
				results[i] = batch.NewError(d.UUID, errors.New("rejected"))
				continue
			}
			r.synced = append(r.synced, d.UUID)
			results[i] = batch.NewOK(d.UUID)
		}
		return results
	}
	return r
}

func TestResync_FullRun(t *testing.T) {
	cat := &pagedCatalog{records: makeRecords("a", "b", "c", "d", "e")}
	idx := newRecordingIndexer()
	svc := New(idx, cat, zap.NewNop())

	report, err := svc.Resync(context.Background(), ResyncOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Total != 5 || report.Successful != 5 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.Pages != 3 {
		t.Errorf("Pages = %d, want 3", report.Pages)
	}
	if !report.Ok() {
		t.Error("clean run must report Ok")
	}
	if len(idx.synced) != 5 {
		t.Errorf("synced %d cards, want 5", len(idx.synced))
	}
}

func TestResync_ContinueOnError(t *testing.T) {
	cat := &pagedCatalog{records: makeRecords("a", "b", "c", "d")}
	idx := newRecordingIndexer("u-b")
	svc := New(idx, cat, zap.NewNop())

	report, err := svc.Resync(context.Background(), ResyncOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("a failed page must not abort the run: %v", err)
	}

	if report.Successful != 3 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.FailedPages != 1 {
		t.Errorf("FailedPages = %d, want 1", report.FailedPages)
	}
	if report.Ok() {
		t.Error("run with failures must not report Ok")
	}

	// Records after the failed one were still processed.
	found := false
	for _, u := range idx.synced {
		if u == "u-d" {
			found = true
		}
	}
	if !found {
		t.Error("records after a failure must still sync")
	}
}

func TestResync_ResumeFromCursor(t *testing.T) {
	cat := &pagedCatalog{records: makeRecords("a", "b", "c", "d", "e")}
	idx := newRecordingIndexer()
	svc := New(idx, cat, zap.NewNop())

	// Resume after "b": only c, d, e get written.
	resume := card.Cursor{Name: "b", UUID: "u-b"}
	report, err := svc.Resync(context.Background(), ResyncOptions{PageSize: 2, Cursor: resume})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Successful != 3 {
		t.Errorf("Successful = %d, want 3", report.Successful)
	}
	for _, u := range idx.synced {
		if u == "u-a" || u == "u-b" {
			t.Errorf("record %s before the cursor must not be re-synced", u)
		}
	}
	if want := (card.Cursor{Name: "e", UUID: "u-e"}); report.Cursor != want {
		t.Errorf("final cursor = %v, want %v", report.Cursor, want)
	}
}

func TestResync_DuplicateNamesSpanPages(t *testing.T) {
	// Basic lands share one name across far more printings than a page
	// holds; the uuid tie-break keeps the scan from skipping the rest of
	// the run at a page boundary.
	records := []*card.SourceRecord{
		{UUID: "f1", Name: "Forest"},
		{UUID: "f2", Name: "Forest"},
		{UUID: "f3", Name: "Forest"},
		{UUID: "g1", Name: "Giant Growth"},
	}
	cat := &pagedCatalog{records: records}
	idx := newRecordingIndexer()
	svc := New(idx, cat, zap.NewNop())

	report, err := svc.Resync(context.Background(), ResyncOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Successful != 4 {
		t.Errorf("Successful = %d, want 4", report.Successful)
	}
	seen := map[string]bool{}
	for _, u := range idx.synced {
		seen[u] = true
	}
	for _, want := range []string{"f1", "f2", "f3", "g1"} {
		if !seen[want] {
			t.Errorf("record %s skipped by cursor pagination (got %v)", want, seen)
		}
	}

	// Resuming mid-run picks up the remaining printings of the same name.
	idx = newRecordingIndexer()
	svc = New(idx, cat, zap.NewNop())
	report, err = svc.Resync(context.Background(), ResyncOptions{
		PageSize: 2,
		Cursor:   card.Cursor{Name: "Forest", UUID: "f1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Successful != 3 {
		t.Errorf("Successful = %d, want 3", report.Successful)
	}
	for _, u := range idx.synced {
		if u == "f1" {
			t.Error("record f1 before the cursor must not be re-synced")
		}
	}
}

func TestResync_CleanStartRecreatesIndex(t *testing.T) {
	recreated := false
	ensured := false
	idx := newRecordingIndexer()
	idx.recreateIndexFn = func(_ context.Context) error {
		recreated = true
		return nil
	}
	idx.ensureIndexFn = func(_ context.Context) error {
		ensured = true
		return nil
	}
	cat := &pagedCatalog{records: makeRecords("a")}
	svc := New(idx, cat, zap.NewNop())

	if _, err := svc.Resync(context.Background(), ResyncOptions{CleanStart: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recreated || ensured {
		t.Errorf("clean start: recreated=%v ensured=%v", recreated, ensured)
	}

	recreated, ensured = false, false
	if _, err := svc.Resync(context.Background(), ResyncOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recreated || !ensured {
		t.Errorf("default start: recreated=%v ensured=%v", recreated, ensured)
	}
}

func TestValidate(t *testing.T) {
	cat := &pagedCatalog{records: makeRecords("a", "b", "c")}
	idx := newRecordingIndexer()
	idx.countFn = func(_ context.Context) (int, error) { return 3, nil }
	idx.getFn = func(_ context.Context, id string) (*card.Document, error) {
		if id == "u-b" {
			return nil, errors.New("not found")
		}
		return &card.Document{UUID: id}, nil
	}
	svc := New(idx, cat, zap.NewNop())

	report, err := svc.Validate(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.CatalogCount != 3 || report.IndexCount != 3 {
		t.Errorf("counts = %d/%d", report.CatalogCount, report.IndexCount)
	}
	if report.Sampled != 3 || len(report.Missing) != 1 || report.Missing[0] != "u-b" {
		t.Errorf("sample = %+v", report)
	}
	if report.Valid() {
		t.Error("missing sample must invalidate the report")
	}
}
