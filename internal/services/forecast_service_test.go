package services

import (
	"context"
	"testing"

	"saldo/internal/core"
	"saldo/internal/ledger/memory"
)

func date(y, m, d int) core.Date {
	return core.Date{Year: y, Month: m, Day: d}
}

func TestForecastService_ProjectMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.New(core.Money{Cents: 100000})

	if _, err := store.CreateTransaction(ctx, core.Transaction{
		Date:       date(2024, 3, 5),
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 20000},
		Note:       "car repair",
		Provenance: core.Manual,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := store.CreateRule(ctx, core.RecurringRule{
		Kind:       core.Income,
		Amount:     core.Money{Cents: 300000},
		Note:       "salary",
		Frequency:  core.Monthly,
		StartDate:  date(2023, 1, 1),
		DayOfMonth: 1,
		Active:     true,
	}); err != nil {
		t.Fatal(err)
	}

	svc := NewForecastService(store, store, store)

	proj, err := svc.ProjectMonth(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("ProjectMonth() error = %v", err)
	}

	if len(proj.Snapshots) != 31 {
		t.Fatalf("snapshots = %d, want 31", len(proj.Snapshots))
	}
	if len(proj.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(proj.Occurrences))
	}
	if proj.StartingBalance.Cents != 100000 {
		t.Errorf("starting balance = %d, want 100000", proj.StartingBalance.Cents)
	}

	day1 := proj.Snapshots[0]
	if day1.DailyDelta.Cents != 300000 || day1.RunningBalance.Cents != 400000 {
		t.Errorf("day 1 = %+v, want delta 300000 balance 400000", day1)
	}
	day5 := proj.Snapshots[4]
	if day5.DailyDelta.Cents != -20000 || day5.RunningBalance.Cents != 380000 {
		t.Errorf("day 5 = %+v, want delta -20000 balance 380000", day5)
	}
	last := proj.Snapshots[30]
	if last.RunningBalance.Cents != 380000 {
		t.Errorf("last balance = %d, want 380000", last.RunningBalance.Cents)
	}
}

func TestForecastService_ProjectMonth_InvalidMonth(t *testing.T) {
	store := memory.New(core.Money{})
	svc := NewForecastService(store, store, store)

	for _, month := range []int{0, 13, -1} {
		if _, err := svc.ProjectMonth(context.Background(), 2024, month); err == nil {
			t.Errorf("ProjectMonth(2024, %d) expected error", month)
		}
	}
}

func TestForecastService_ProjectMonth_EmptyLedger(t *testing.T) {
	store := memory.New(core.Money{Cents: 5000})
	svc := NewForecastService(store, store, store)

	proj, err := svc.ProjectMonth(context.Background(), 2024, 2)
	if err != nil {
		t.Fatalf("ProjectMonth() error = %v", err)
	}
	if len(proj.Snapshots) != 29 {
		t.Fatalf("snapshots = %d, want 29 for leap February", len(proj.Snapshots))
	}
	for _, snap := range proj.Snapshots {
		if snap.DailyDelta.Cents != 0 || snap.RunningBalance.Cents != 5000 {
			t.Fatalf("snapshot %v should carry the starting balance unchanged", snap.Date)
		}
	}
}
