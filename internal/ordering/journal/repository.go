package journal

import "context"

// Repository persists journal entries.
type Repository interface {
	// Save appends an entry.
	Save(ctx context.Context, entry *Entry) error
	// History returns every entry of one order in insertion order.
	History(ctx context.Context, orderID int64) ([]Entry, error)
}
