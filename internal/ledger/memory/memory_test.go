package memory

import (
	"context"
	"errors"
	"testing"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(core.Money{Cents: 100000})

	id, err := s.CreateTransaction(ctx, core.Transaction{
		Date:       core.NewDate(2024, 3, 5),
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 20000},
		Note:       "rent",
		Provenance: core.Manual,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.GetTransaction(ctx, id)
	if err != nil || got.Note != "rent" {
		t.Fatalf("get: %v / %+v", err, got)
	}

	got.Amount = core.Money{Cents: 21000}
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := s.ListTransactions(ctx, 2024, 3)
	if err != nil || len(list) != 1 || list[0].Amount.Cents != 21000 {
		t.Fatalf("list: %v / %+v", err, list)
	}
	if list, _ := s.ListTransactions(ctx, 2024, 4); len(list) != 0 {
		t.Fatal("month filter leaked")
	}

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, id); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactionValidationRejected(t *testing.T) {
	s := New(core.Money{})
	_, err := s.CreateTransaction(context.Background(), core.Transaction{
		Date:       core.NewDate(2024, 2, 30),
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 1},
		Provenance: core.Manual,
	})
	if err == nil {
		t.Fatal("expected validation error for Feb 30")
	}
}

func TestRulesPreserveInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New(core.Money{})

	for _, id := range []string{"first", "second", "third"} {
		if _, err := s.CreateRule(ctx, core.RecurringRule{
			ID: id, Kind: core.Income, Amount: core.Money{Cents: 100},
			Frequency: core.Monthly, StartDate: core.NewDate(2024, 1, 1),
			DayOfMonth: 1, Active: true,
		}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := s.DeleteRule(ctx, "second"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rules, err := s.ListRules(ctx)
	if err != nil || len(rules) != 2 {
		t.Fatalf("list: %v / %d", err, len(rules))
	}
	if rules[0].ID != "first" || rules[1].ID != "third" {
		t.Fatalf("order lost: %s, %s", rules[0].ID, rules[1].ID)
	}
}

func TestStartingBalance(t *testing.T) {
	ctx := context.Background()
	s := New(core.Money{Cents: 5000})
	if b, _ := s.StartingBalance(ctx); b.Cents != 5000 {
		t.Fatalf("balance = %d", b.Cents)
	}
	if err := s.SetStartingBalance(ctx, core.Money{Cents: -100}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if b, _ := s.StartingBalance(ctx); b.Cents != -100 {
		t.Fatalf("balance = %d", b.Cents)
	}
}
