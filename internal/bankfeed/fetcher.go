// Package bankfeed polls external bank APIs and forwards their
// transactions to the import pipeline.
package bankfeed

import (
	"context"

	"saldo/internal/core"
)

// Record is one transaction as reported by a bank feed. Ref is the
// feed's own identifier and must be stable across polls.
type Record struct {
	Ref         string
	Date        core.Date
	Kind        core.TxKind
	AmountCents int64
	Note        string
}

// Fetcher defines the interface for pulling transactions from a feed.
type Fetcher interface {
	FetchTransactions(ctx context.Context, since core.Date) ([]Record, error)
	Name() string
}
