// Package journal defines the append-only audit trail of café state changes.
//
// Every committed operation that changes orders or stock writes one Entry. The journal is never
// replayed: café state is in memory and starts fresh on restart. The journal answers "what
// happened to order X" and links each change to the trace that caused it.
package journal

import "time"

// Kind is the type of change recorded.
type Kind string

const (
	KindOrderSubmitted Kind = "ORDER_SUBMITTED"
	KindOrderAdvanced  Kind = "ORDER_ADVANCED"
	KindStockAdjusted  Kind = "STOCK_ADJUSTED"
)

// Entry is a single row in the order_journal table.
type Entry struct {
	// ID is a random UUID assigned when the entry is built.
	ID string

	Kind Kind

	// OrderID is zero for entries that are not about one order (manual stock changes).
	OrderID int64

	// MenuItemID and Delta are set for stock adjustments.
	MenuItemID int
	Delta      int

	// Status is the order status after the change.
	Status string

	// Payload is a JSON snapshot of the order, written on submit.
	Payload string

	TraceID string
	SpanID  string

	RecordedAt time.Time
}
