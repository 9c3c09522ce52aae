// Package sqlite provides a SQLite-backed journal.Repository.
//
// WAL mode is enabled on Open so history reads from the admin view do not block the writer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/cozy-cafe/internal/ordering/journal"

	// Pure-Go driver, no CGO.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS order_journal (
    seq           INTEGER PRIMARY KEY AUTOINCREMENT,
    id            TEXT    NOT NULL UNIQUE,
    kind          TEXT    NOT NULL,
    -- 0 when the entry is not about a single order.
    order_id      INTEGER NOT NULL DEFAULT 0,
    menu_item_id  INTEGER NOT NULL DEFAULT 0,
    delta         INTEGER NOT NULL DEFAULT 0,
    status        TEXT    NOT NULL DEFAULT '',
    payload       TEXT,
    trace_id      TEXT    NOT NULL DEFAULT '',
    span_id       TEXT    NOT NULL DEFAULT '',
    recorded_at   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_journal_order_id ON order_journal(order_id, seq);
CREATE INDEX IF NOT EXISTS idx_order_journal_trace_id ON order_journal(trace_id);
`

// Repository is the SQLite implementation of journal.Repository.
type Repository struct {
	db *sql.DB
}

var _ journal.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/journal.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends one entry.
func (r *Repository) Save(ctx context.Context, entry *journal.Entry) error {
	const q = `
		INSERT INTO order_journal
			(id, kind, order_id, menu_item_id, delta, status, payload, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ID,
		string(entry.Kind),
		entry.OrderID,
		entry.MenuItemID,
		entry.Delta,
		entry.Status,
		nullableString(entry.Payload),
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save journal entry %q: %w", entry.ID, err)
	}
	return nil
}

// History returns the entries of orderID in insertion order.
func (r *Repository) History(ctx context.Context, orderID int64) ([]journal.Entry, error) {
	const q = `
		SELECT id, kind, order_id, menu_item_id, delta, status, COALESCE(payload,''),
		       trace_id, span_id, recorded_at
		FROM   order_journal
		WHERE  order_id = ?
		ORDER  BY seq ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %d: %w", orderID, err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var recordedAt string
		if err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.OrderID,
			&e.MenuItemID,
			&e.Delta,
			&e.Status,
			&e.Payload,
			&e.TraceID,
			&e.SpanID,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan history for %d: %w", orderID, err)
		}
		if e.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %d: %w", orderID, err)
	}
	return entries, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores NULL instead of an empty payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
