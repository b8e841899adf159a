// Package sqlite stores the journal in a local SQLite file using the pure-Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kitchen-flow/internal/journal"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_id   TEXT NOT NULL,
    event_type  TEXT NOT NULL,
    table_id    TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT '',
    detail      TEXT,
    request_id  TEXT NOT NULL DEFAULT '',
    occurred_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_entity ON journal_entries(entity_id, id);
`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(ctx context.Context, entry *journal.Entry) error {
	const q = `
		INSERT INTO journal_entries
			(entity_id, event_type, table_id, status, detail, request_id, occurred_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q,
		entry.EntityID,
		entry.EventType,
		entry.TableID,
		entry.Status,
		nullableString(entry.Detail),
		entry.RequestID,
		entry.OccurredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save entry for %q: %w", entry.EntityID, err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

func (r *Repository) History(ctx context.Context, entityID string) ([]journal.Entry, error) {
	const q = `
		SELECT id, entity_id, event_type, table_id, status, COALESCE(detail, ''), request_id, occurred_at
		FROM   journal_entries
		WHERE  entity_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, entityID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", entityID, err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		var (
			e          journal.Entry
			occurredAt string
		)
		if err := rows.Scan(&e.ID, &e.EntityID, &e.EventType, &e.TableID, &e.Status, &e.Detail, &e.RequestID, &occurredAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan entry: %w", err)
		}
		e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse time %q: %w", occurredAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
