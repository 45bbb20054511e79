package core

import (
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:         "t1",
		Date:       NewDate(2024, 3, 5),
		Kind:       Expense,
		Amount:     Money{Cents: 20000},
		Note:       "groceries",
		Provenance: Manual,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	occurrence := Transaction{
		ID:         "r1@2024-03-01",
		Date:       NewDate(2024, 3, 1),
		Kind:       Income,
		Amount:     Money{Cents: 300000},
		Provenance: Recurring,
		RuleID:     "r1",
	}
	if err := occurrence.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "a", Date: Date{}, Kind: Income, Amount: Money{Cents: 1}, Provenance: Manual},                          // zero date
		{ID: "a", Date: NewDate(2024, 2, 30), Kind: Income, Amount: Money{Cents: 1}, Provenance: Manual},            // no Feb 30
		{ID: "a", Date: NewDate(2024, 3, 5), Kind: "transfer", Amount: Money{Cents: 1}, Provenance: Manual},         // bad kind
		{ID: "a", Date: NewDate(2024, 3, 5), Kind: Income, Amount: Money{Cents: -1}, Provenance: Manual},            // negative
		{ID: "a", Date: NewDate(2024, 3, 5), Kind: Income, Amount: Money{Cents: 1}, Provenance: "derived"},          // bad provenance
		{ID: "a", Date: NewDate(2024, 3, 5), Kind: Income, Amount: Money{Cents: 1}, Provenance: Recurring},          // missing rule ref
		{ID: "a", Date: NewDate(2024, 3, 5), Kind: Income, Amount: Money{Cents: 1}, Provenance: Manual, RuleID: "r"}, // stray rule ref
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	cases := []struct {
		name string
		rule RecurringRule
		ok   bool
	}{
		{
			name: "monthly with day of month",
			rule: RecurringRule{ID: "r", Kind: Income, Amount: Money{Cents: 300000}, Frequency: Monthly, StartDate: NewDate(2023, 1, 1), DayOfMonth: 1, Active: true},
			ok:   true,
		},
		{
			name: "weekly with weekday",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 1500}, Frequency: Weekly, StartDate: NewDate(2024, 1, 1), Weekday: 1, Active: true},
			ok:   true,
		},
		{
			name: "fortnightly needs no selector",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 1500}, Frequency: Fortnightly, StartDate: NewDate(2024, 1, 1), Active: true},
			ok:   true,
		},
		{
			name: "bounded range",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 100}, Frequency: Monthly, StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 6, 30), DayOfMonth: 15},
			ok:   true,
		},
		{
			name: "end before start",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 100}, Frequency: Monthly, StartDate: NewDate(2024, 6, 1), EndDate: NewDate(2024, 1, 1), DayOfMonth: 1},
			ok:   false,
		},
		{
			name: "monthly without day of month",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 100}, Frequency: Monthly, StartDate: NewDate(2024, 1, 1)},
			ok:   false,
		},
		{
			name: "weekly with out-of-range weekday",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 100}, Frequency: Weekly, StartDate: NewDate(2024, 1, 1), Weekday: 7},
			ok:   false,
		},
		{
			name: "unknown frequency",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: 100}, Frequency: "yearly", StartDate: NewDate(2024, 1, 1), DayOfMonth: 1},
			ok:   false,
		},
		{
			name: "negative amount",
			rule: RecurringRule{ID: "r", Kind: Expense, Amount: Money{Cents: -100}, Frequency: Monthly, StartDate: NewDate(2024, 1, 1), DayOfMonth: 1},
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
