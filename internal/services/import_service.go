package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
)

// ImportService turns bank-feed records into imported transactions.
// Records are keyed by the feed's external reference, so consuming
// the same message twice leaves a single ledger row.
type ImportService struct {
	store ledger.ImportWriter
}

func NewImportService(store ledger.ImportWriter) *ImportService {
	return &ImportService{store: store}
}

// HandleMessage validates and upserts one feed record.
func (s *ImportService) HandleMessage(ctx context.Context, msg *amqp.TransactionImportedMessage) error {
	if msg.ExternalRef == "" {
		return fmt.Errorf("feed record without external reference")
	}

	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("feed record %s: %w", msg.ExternalRef, err)
	}

	kind := core.TxKind(msg.Kind)
	if kind != core.Income && kind != core.Expense {
		return fmt.Errorf("feed record %s: %w", msg.ExternalRef, core.ErrInvalidKind)
	}

	tx := core.Transaction{
		Date:   date,
		Kind:   kind,
		Amount: core.Money{Cents: msg.AmountCents},
		Note:   msg.Note,
	}

	id, err := s.store.UpsertImportedTransaction(ctx, msg.ExternalRef, tx)
	if err != nil {
		return fmt.Errorf("upsert feed record %s: %w", msg.ExternalRef, err)
	}

	slog.InfoContext(ctx, "Imported feed record",
		"external_ref", msg.ExternalRef,
		"feed", msg.Feed,
		"transaction_id", id)

	return nil
}
