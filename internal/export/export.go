// Package export mirrors committed transactions to an external destination.
// Mirroring is best-effort: the API never fails a request because a mirror
// write failed.
package export

import "context"

// Record is the flattened transaction shape handed to a mirror.
type Record struct {
	Date        string
	Description string
	Category    string
	Amount      float64
	IsExpense   bool
}

// Mirror appends transaction records somewhere outside the primary store.
type Mirror interface {
	Append(ctx context.Context, rec Record) error
}
