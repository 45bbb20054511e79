// Package ledger defines the ports between the engine/HTTP layers and
// whatever stores transactions, rules and settings.
package ledger

import (
	"context"
	"errors"

	"saldo/internal/core"
)

// ErrNotFound is returned when a transaction or rule ID does not exist.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		// CreateTransaction persists a manual or imported transaction and
		// returns its ID (generated when tx.ID is empty).
		CreateTransaction(ctx context.Context, tx core.Transaction) (id string, err error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	TransactionReader interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns stored transactions dated within the
		// given month, ascending by date. Recurring occurrences are never
		// stored and never appear here.
		ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error)
	}

	RuleWriter interface {
		CreateRule(ctx context.Context, rule core.RecurringRule) (id string, err error)
		UpdateRule(ctx context.Context, rule core.RecurringRule) error
		DeleteRule(ctx context.Context, id string) error
	}

	RuleReader interface {
		// ListRules returns every stored rule; window and active
		// filtering is the expander's job.
		ListRules(ctx context.Context) ([]core.RecurringRule, error)
	}

	// ImportWriter stores bank-feed transactions keyed by the feed's
	// own reference so replayed feed records do not duplicate.
	ImportWriter interface {
		UpsertImportedTransaction(ctx context.Context, externalRef string, tx core.Transaction) (id string, err error)
	}

	// SettingsReader provides the account's configured starting balance.
	SettingsReader interface {
		StartingBalance(ctx context.Context) (core.Money, error)
	}

	SettingsWriter interface {
		SetStartingBalance(ctx context.Context, balance core.Money) error
	}
)
