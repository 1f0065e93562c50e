// Package catalog is the canonical card store backed by SQLite. Records are
// kept as JSON blobs keyed by uuid, with the card name indexed to support
// the stably-ordered resync scan.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/card"
)

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	uuid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name, uuid);
`

// Store provides point reads, writes and the paginated resync scan over the
// canonical catalog.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the record with the given uuid.
func (s *Store) Get(ctx context.Context, uuid string) (*card.SourceRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM cards WHERE uuid = ?`, uuid,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select card %s: %w", uuid, err)
	}

	var rec card.SourceRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", uuid, err)
	}
	return &rec, nil
}

// Put inserts or replaces a record. The record must carry an identity.
func (s *Store) Put(ctx context.Context, rec *card.SourceRecord) error {
	uuid := rec.Identity()
	if uuid == "" {
		return domain.ErrMissingIdentity
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode card %s: %w", uuid, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (uuid, name, data) VALUES (?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		uuid, rec.Name, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", uuid, err)
	}
	return nil
}

// Delete removes a record. Removing an absent uuid is not an error.
func (s *Store) Delete(ctx context.Context, uuid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE uuid = ?`, uuid); err != nil {
		return fmt.Errorf("delete card %s: %w", uuid, err)
	}
	return nil
}

// ScanPage returns up to limit records ordered by (name, uuid), starting
// strictly after the cursor. Names repeat across printings, so the cursor
// carries the uuid tie-break; resuming mid-run of a repeated name picks up
// the remaining printings instead of skipping them. The returned cursor is
// zero once the scan is exhausted.
func (s *Store) ScanPage(ctx context.Context, cursor card.Cursor, limit int) ([]*card.SourceRecord, card.Cursor, error) {
	if limit <= 0 {
		return nil, card.Cursor{}, fmt.Errorf("page limit must be positive")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM cards
		WHERE name > ? OR (name = ? AND uuid > ?)
		ORDER BY name, uuid
		LIMIT ?`,
		cursor.Name, cursor.Name, cursor.UUID, limit,
	)
	if err != nil {
		return nil, card.Cursor{}, fmt.Errorf("scan page after %s: %w", cursor, err)
	}
	defer rows.Close()

	var records []*card.SourceRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, card.Cursor{}, fmt.Errorf("scan row: %w", err)
		}
		var rec card.SourceRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, card.Cursor{}, fmt.Errorf("decode row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, card.Cursor{}, fmt.Errorf("scan page after %s: %w", cursor, err)
	}

	var next card.Cursor
	if len(records) == limit {
		last := records[len(records)-1]
		next = card.Cursor{Name: last.Name, UUID: last.Identity()}
	}
	return records, next, nil
}

// Count returns the number of catalog records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}
