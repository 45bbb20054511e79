package services

import (
	"context"
	"errors"
	"testing"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/ledger/memory"
)

func TestTransactionService_CreateForcesManualProvenance(t *testing.T) {
	ctx := context.Background()
	store := memory.New(core.Money{})
	svc := NewTransactionService(store, nil)

	id, err := svc.CreateTransaction(ctx, core.Transaction{
		Date:       date(2024, 3, 10),
		Kind:       core.Income,
		Amount:     core.Money{Cents: 1500},
		Provenance: core.Recurring, // must not survive
		RuleID:     "sneaky",
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	tx, err := svc.GetTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Provenance != core.Manual {
		t.Errorf("provenance = %v, want manual", tx.Provenance)
	}
	if tx.RuleID != "" {
		t.Errorf("rule ID = %q, want empty", tx.RuleID)
	}
}

func TestTransactionService_ImportForcesImportedProvenance(t *testing.T) {
	ctx := context.Background()
	store := memory.New(core.Money{})
	svc := NewTransactionService(store, nil)

	id, err := svc.ImportTransaction(ctx, core.Transaction{
		Date:       date(2024, 3, 5),
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 1250},
		Note:       "groceries",
		Provenance: core.Manual, // must not survive
	})
	if err != nil {
		t.Fatalf("ImportTransaction() error = %v", err)
	}

	tx, err := svc.GetTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Provenance != core.Imported {
		t.Errorf("provenance = %v, want imported", tx.Provenance)
	}
	if tx.RuleID != "" {
		t.Errorf("rule ID = %q, want empty", tx.RuleID)
	}
}

func TestTransactionService_UpdateKeepsProvenance(t *testing.T) {
	ctx := context.Background()
	store := memory.New(core.Money{})
	svc := NewTransactionService(store, nil)

	id, err := store.UpsertImportedTransaction(ctx, "feed:1", core.Transaction{
		Date:   date(2024, 3, 2),
		Kind:   core.Expense,
		Amount: core.Money{Cents: 999},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = svc.UpdateTransaction(ctx, core.Transaction{
		ID:         id,
		Date:       date(2024, 3, 3),
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 1099},
		Provenance: core.Manual, // must not overwrite imported
	})
	if err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	tx, err := svc.GetTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Provenance != core.Imported {
		t.Errorf("provenance = %v, want imported", tx.Provenance)
	}
	if tx.Amount.Cents != 1099 {
		t.Errorf("amount = %d, want 1099", tx.Amount.Cents)
	}
}

func TestTransactionService_DeleteMissing(t *testing.T) {
	svc := NewTransactionService(memory.New(core.Money{}), nil)

	err := svc.DeleteTransaction(context.Background(), "no-such-id")
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionService_RuleLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(memory.New(core.Money{}), nil)

	id, err := svc.CreateRule(ctx, core.RecurringRule{
		Kind:      core.Expense,
		Amount:    core.Money{Cents: 4500},
		Note:      "gym",
		Frequency: core.Weekly,
		StartDate: date(2024, 1, 1),
		Weekday:   1,
		Active:    true,
	})
	if err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}

	rules, err := svc.ListRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].ID != id {
		t.Fatalf("ListRules() = %v, want single rule %s", rules, id)
	}

	rules[0].Amount = core.Money{Cents: 5000}
	if err := svc.UpdateRule(ctx, rules[0]); err != nil {
		t.Fatalf("UpdateRule() error = %v", err)
	}

	if err := svc.DeleteRule(ctx, id); err != nil {
		t.Fatalf("DeleteRule() error = %v", err)
	}
	rules, _ = svc.ListRules(ctx)
	if len(rules) != 0 {
		t.Errorf("rules after delete = %d, want 0", len(rules))
	}
}

func TestTransactionService_StartingBalance(t *testing.T) {
	ctx := context.Background()
	svc := NewTransactionService(memory.New(core.Money{}), nil)

	if err := svc.SetStartingBalance(ctx, core.Money{Cents: -2500}); err != nil {
		t.Fatalf("SetStartingBalance() error = %v", err)
	}
	got, err := svc.StartingBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Cents != -2500 {
		t.Errorf("StartingBalance() = %d, want -2500", got.Cents)
	}
}
