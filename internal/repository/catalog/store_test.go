package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/card"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := &card.SourceRecord{UUID: "u1", Name: "Sol Ring", ManaValue: 1}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Sol Ring" || got.ManaValue != 1 {
		t.Errorf("got %+v", got)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, domain.ErrCardNotFound) {
		t.Errorf("missing uuid: err = %v, want ErrCardNotFound", err)
	}

	if err := s.Put(ctx, &card.SourceRecord{}); !errors.Is(err, domain.ErrMissingIdentity) {
		t.Errorf("put without identity: err = %v, want ErrMissingIdentity", err)
	}

	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Errorf("repeated delete must succeed: %v", err)
	}
}

func TestScanPage_DuplicateNames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A name run longer than the page size must survive the page boundary.
	for _, r := range []*card.SourceRecord{
		{UUID: "f1", Name: "Forest"},
		{UUID: "f2", Name: "Forest"},
		{UUID: "f3", Name: "Forest"},
		{UUID: "g1", Name: "Giant Growth"},
	} {
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("put %s: %v", r.UUID, err)
		}
	}

	seen := map[string]bool{}
	cursor := card.Cursor{}
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("scan did not terminate")
		}
		records, next, err := s.ScanPage(ctx, cursor, 2)
		if err != nil {
			t.Fatalf("scan page after %v: %v", cursor, err)
		}
		if len(records) == 0 {
			break
		}
		for _, r := range records {
			if seen[r.UUID] {
				t.Errorf("record %s returned twice", r.UUID)
			}
			seen[r.UUID] = true
		}
		if next.IsZero() {
			break
		}
		cursor = next
	}

	for _, want := range []string{"f1", "f2", "f3", "g1"} {
		if !seen[want] {
			t.Errorf("record %s skipped by cursor pagination (got %v)", want, seen)
		}
	}
}

func TestScanPage_ResumeMidRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, r := range []*card.SourceRecord{
		{UUID: "f1", Name: "Forest"},
		{UUID: "f2", Name: "Forest"},
		{UUID: "g1", Name: "Giant Growth"},
	} {
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("put %s: %v", r.UUID, err)
		}
	}

	records, _, err := s.ScanPage(ctx, card.Cursor{Name: "Forest", UUID: "f1"}, 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 || records[0].UUID != "f2" || records[1].UUID != "g1" {
		got := make([]string, len(records))
		for i, r := range records {
			got[i] = r.UUID
		}
		t.Errorf("resume after (Forest, f1) returned %v, want [f2 g1]", got)
	}
}
