// Package services orchestrates ledger storage, the forecast engine
// and AMQP messaging behind the HTTP and worker entry points.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/forecast"
	"saldo/internal/ledger"
)

// ForecastService derives the month projection on demand. Nothing is
// cached or stored here; every call expands rules and folds balances
// from scratch so edits are reflected immediately.
type ForecastService struct {
	txs      ledger.TransactionReader
	rules    ledger.RuleReader
	settings ledger.SettingsReader
}

func NewForecastService(txs ledger.TransactionReader, rules ledger.RuleReader, settings ledger.SettingsReader) *ForecastService {
	return &ForecastService{
		txs:      txs,
		rules:    rules,
		settings: settings,
	}
}

// MonthProjection holds one month of cashflow output plus the inputs
// it was derived from.
type MonthProjection struct {
	Year            int
	Month           int
	StartingBalance core.Money
	Occurrences     []core.Transaction
	Snapshots       []core.CashflowSnapshot
}

// ProjectMonth expands every stored rule into the requested month,
// merges the occurrences with stored transactions and returns one
// snapshot per calendar day.
func (s *ForecastService) ProjectMonth(ctx context.Context, year, month int) (MonthProjection, error) {
	if month < 1 || month > 12 {
		return MonthProjection{}, fmt.Errorf("month %d: %w", month, core.ErrInvalidMonth)
	}

	balance, err := s.settings.StartingBalance(ctx)
	if err != nil {
		return MonthProjection{}, fmt.Errorf("load starting balance: %w", err)
	}

	stored, err := s.txs.ListTransactions(ctx, year, month)
	if err != nil {
		return MonthProjection{}, fmt.Errorf("load transactions: %w", err)
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return MonthProjection{}, fmt.Errorf("load rules: %w", err)
	}

	occurrences := forecast.Expand(rules, year, month)
	snapshots := forecast.Project(balance, stored, occurrences, year, month)

	slog.DebugContext(ctx, "Projected month",
		"year", year,
		"month", month,
		"stored_transactions", len(stored),
		"rules", len(rules),
		"occurrences", len(occurrences))

	return MonthProjection{
		Year:            year,
		Month:           month,
		StartingBalance: balance,
		Occurrences:     occurrences,
		Snapshots:       snapshots,
	}, nil
}
