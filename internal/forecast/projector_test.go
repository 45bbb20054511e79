package forecast

import (
	"testing"

	"saldo/internal/core"
)

func manualTx(id string, date core.Date, kind core.TxKind, cents int64) core.Transaction {
	return core.Transaction{
		ID:         id,
		Date:       date,
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		Provenance: core.Manual,
	}
}

func TestProjectOneSnapshotPerDay(t *testing.T) {
	cases := []struct {
		year, month, days int
	}{
		{2024, 1, 31},
		{2024, 2, 29}, // leap year
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		got := Project(core.Money{Cents: 0}, nil, nil, tc.year, tc.month)
		if len(got) != tc.days {
			t.Fatalf("%d-%02d: %d snapshots, want %d", tc.year, tc.month, len(got), tc.days)
		}
		for i, snap := range got {
			want := core.NewDate(tc.year, tc.month, i+1)
			if !snap.Date.Equal(want) {
				t.Fatalf("%d-%02d: snapshot %d dated %v, want %v", tc.year, tc.month, i, snap.Date, want)
			}
		}
	}
}

func TestProjectEmptyInputCarriesStartingBalance(t *testing.T) {
	start := core.Money{Cents: 123456}
	got := Project(start, nil, nil, 2024, 6)
	for _, snap := range got {
		if snap.DailyDelta.Cents != 0 {
			t.Fatalf("%v: delta %d, want 0", snap.Date, snap.DailyDelta.Cents)
		}
		if snap.RunningBalance.Cents != start.Cents {
			t.Fatalf("%v: balance %d, want %d", snap.Date, snap.RunningBalance.Cents, start.Cents)
		}
	}
}

func TestProjectRunningBalanceIsPrefixSum(t *testing.T) {
	start := core.Money{Cents: 50000}
	manual := []core.Transaction{
		manualTx("a", core.NewDate(2024, 3, 3), core.Income, 10000),
		manualTx("b", core.NewDate(2024, 3, 3), core.Expense, 2500),
		manualTx("c", core.NewDate(2024, 3, 20), core.Expense, 70000),
		manualTx("d", core.NewDate(2024, 3, 31), core.Income, 100),
	}
	got := Project(start, manual, nil, 2024, 3)

	sum := start.Cents
	for _, snap := range got {
		sum2 := snap.RunningBalance.Cents
		if want := sum + snap.DailyDelta.Cents; sum2 != want {
			t.Fatalf("%v: balance %d, want %d", snap.Date, sum2, want)
		}
		sum = sum2
	}
	// Negative balances are preserved, not clamped.
	if got[20].RunningBalance.Cents >= 0 {
		t.Fatalf("expected negative balance on day 21, got %d", got[20].RunningBalance.Cents)
	}
}

func TestProjectExcludesOutOfMonthTransactions(t *testing.T) {
	manual := []core.Transaction{
		manualTx("in", core.NewDate(2024, 3, 10), core.Expense, 1000),
		manualTx("before", core.NewDate(2024, 2, 28), core.Expense, 999999),
		manualTx("after", core.NewDate(2024, 4, 1), core.Income, 999999),
	}
	got := Project(core.Money{Cents: 0}, manual, nil, 2024, 3)
	if got[len(got)-1].RunningBalance.Cents != -1000 {
		t.Fatalf("final balance %d, want -1000", got[len(got)-1].RunningBalance.Cents)
	}
}

// Starting balance 1000, a manual 200 expense on the 5th and a monthly
// 3000 income on day 1: the canonical March 2024 walk-through.
func TestProjectEndToEnd(t *testing.T) {
	rules := []core.RecurringRule{{
		ID:         "payday",
		Kind:       core.Income,
		Amount:     core.Money{Cents: 300000},
		Frequency:  core.Monthly,
		StartDate:  core.NewDate(2023, 1, 1),
		DayOfMonth: 1,
		Active:     true,
	}}
	manual := []core.Transaction{
		manualTx("rent-topup", core.NewDate(2024, 3, 5), core.Expense, 20000),
	}

	occurrences := Expand(rules, 2024, 3)
	got := Project(core.Money{Cents: 100000}, manual, occurrences, 2024, 3)

	if len(got) != 31 {
		t.Fatalf("March must have 31 snapshots, got %d", len(got))
	}
	day1 := got[0]
	if day1.DailyDelta.Cents != 300000 || day1.RunningBalance.Cents != 400000 {
		t.Fatalf("day 1 = {%d, %d}, want {300000, 400000}", day1.DailyDelta.Cents, day1.RunningBalance.Cents)
	}
	day5 := got[4]
	if day5.DailyDelta.Cents != -20000 || day5.RunningBalance.Cents != 380000 {
		t.Fatalf("day 5 = {%d, %d}, want {-20000, 380000}", day5.DailyDelta.Cents, day5.RunningBalance.Cents)
	}
	prev := day1.RunningBalance.Cents
	for i, snap := range got {
		day := i + 1
		if day == 1 || day == 5 {
			prev = snap.RunningBalance.Cents
			continue
		}
		if snap.DailyDelta.Cents != 0 {
			t.Fatalf("day %d delta %d, want 0", day, snap.DailyDelta.Cents)
		}
		if snap.RunningBalance.Cents != prev {
			t.Fatalf("day %d balance %d, want unchanged %d", day, snap.RunningBalance.Cents, prev)
		}
	}
}
