// Package worker runs the AMQP consumer that lands bank-feed records
// in the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/services"
)

// ImportWorker consumes feed messages and hands each one to the
// import service. Redeliveries are safe: the upsert keys on the
// feed's external reference.
type ImportWorker struct {
	client  *amqp.Client
	service *services.ImportService
}

func NewImportWorker(client *amqp.Client, service *services.ImportService) *ImportWorker {
	return &ImportWorker{
		client:  client,
		service: service,
	}
}

// Run consumes until the context is cancelled.
func (w *ImportWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Import worker starting")

	err := w.client.ConsumeTransactionImported(ctx, func(msg *amqp.TransactionImportedMessage) error {
		return w.service.HandleMessage(ctx, msg)
	})
	if errors.Is(err, context.Canceled) {
		slog.InfoContext(ctx, "Import worker stopped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("consume feed messages: %w", err)
	}
	return nil
}
