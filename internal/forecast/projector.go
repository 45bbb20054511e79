package forecast

import "saldo/internal/core"

// Project walks every calendar day of the given month (one-based)
// and produces one snapshot per day: the day's signed delta and the
// running balance carried forward from startingBalance.
//
// manual and occurrences are unioned; transactions dated outside the
// month are silently excluded rather than erroring, so a caller that
// failed to pre-filter cannot corrupt a projection. The walk is
// strictly sequential: each day's running balance depends on every
// prior day's delta. Balances may go negative and are preserved as-is;
// all arithmetic is in integer cents, rounding happens only at
// presentation.
func Project(startingBalance core.Money, manual, occurrences []core.Transaction, year, month int) []core.CashflowSnapshot {
	days := core.DaysInMonth(year, month)

	deltas := make([]int64, days+1) // index by day of month
	bucket := func(txs []core.Transaction) {
		for _, tx := range txs {
			if tx.Date.Year != year || tx.Date.Month != month {
				continue
			}
			if tx.Date.Day < 1 || tx.Date.Day > days {
				continue
			}
			if tx.Kind == core.Income {
				deltas[tx.Date.Day] += tx.Amount.Cents
			} else {
				deltas[tx.Date.Day] -= tx.Amount.Cents
			}
		}
	}
	bucket(manual)
	bucket(occurrences)

	running := startingBalance.Cents
	out := make([]core.CashflowSnapshot, 0, days)
	for day := 1; day <= days; day++ {
		running += deltas[day]
		out = append(out, core.CashflowSnapshot{
			Date:           core.NewDate(year, month, day),
			DailyDelta:     core.Money{Cents: deltas[day]},
			RunningBalance: core.Money{Cents: running},
		})
	}
	return out
}
