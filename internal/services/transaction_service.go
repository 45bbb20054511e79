package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
)

// ledgerStore groups the write and read ports the service needs.
type ledgerStore interface {
	ledger.TransactionWriter
	ledger.TransactionReader
	ledger.RuleWriter
	ledger.RuleReader
	ledger.SettingsReader
	ledger.SettingsWriter
}

// TransactionService orchestrates ledger writes across storage and
// AMQP. Writes land in storage first; change notifications are best
// effort and never fail the request.
type TransactionService struct {
	store      ledgerStore
	amqpClient *amqp.Client
}

func NewTransactionService(store ledgerStore, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// CreateTransaction stores a manual transaction. Provenance is forced
// so callers cannot inject recurring occurrences into storage.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	tx.Provenance = core.Manual
	tx.RuleID = ""

	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.notify(ctx, "transaction", id, "created")
	return id, nil
}

// ImportTransaction stores an externally sourced transaction (CSV
// upload) with imported provenance.
func (s *TransactionService) ImportTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	tx.Provenance = core.Imported
	tx.RuleID = ""

	id, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save imported transaction: %w", err)
	}

	s.notify(ctx, "transaction", id, "imported")
	return id, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	existing, err := s.store.GetTransaction(ctx, tx.ID)
	if err != nil {
		return err
	}
	// Provenance is immutable; edits keep whatever the row had.
	tx.Provenance = existing.Provenance
	tx.RuleID = existing.RuleID

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.notify(ctx, "transaction", tx.ID, "updated")
	return nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, "transaction", id, "deleted")
	return nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d: %w", month, core.ErrInvalidMonth)
	}
	return s.store.ListTransactions(ctx, year, month)
}

func (s *TransactionService) CreateRule(ctx context.Context, rule core.RecurringRule) (string, error) {
	id, err := s.store.CreateRule(ctx, rule)
	if err != nil {
		return "", fmt.Errorf("save rule: %w", err)
	}
	s.notify(ctx, "rule", id, "created")
	return id, nil
}

func (s *TransactionService) UpdateRule(ctx context.Context, rule core.RecurringRule) error {
	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return err
	}
	s.notify(ctx, "rule", rule.ID, "updated")
	return nil
}

func (s *TransactionService) DeleteRule(ctx context.Context, id string) error {
	if err := s.store.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, "rule", id, "deleted")
	return nil
}

func (s *TransactionService) ListRules(ctx context.Context) ([]core.RecurringRule, error) {
	return s.store.ListRules(ctx)
}

func (s *TransactionService) StartingBalance(ctx context.Context) (core.Money, error) {
	return s.store.StartingBalance(ctx)
}

func (s *TransactionService) SetStartingBalance(ctx context.Context, balance core.Money) error {
	if err := s.store.SetStartingBalance(ctx, balance); err != nil {
		return fmt.Errorf("set starting balance: %w", err)
	}
	s.notify(ctx, "settings", "starting_balance", "updated")
	return nil
}

func (s *TransactionService) notify(ctx context.Context, entity, id, action string) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(entity, id, action)
	if err := s.amqpClient.PublishLedgerChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"entity", entity, "id", id, "action", action, "error", err)
	}
}

// Close closes the AMQP connection when one is configured. Storage
// lifetime belongs to the backend factory.
func (s *TransactionService) Close() error {
	if s.amqpClient != nil {
		return s.amqpClient.Close()
	}
	return nil
}
