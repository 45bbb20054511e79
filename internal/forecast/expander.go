package forecast

import (
	"log/slog"
	"sort"

	"saldo/internal/core"
)

// OccurrenceID derives the deterministic identifier of a generated
// occurrence. The same (rule, date) pair always yields the same ID, so
// re-running expansion is idempotent and callers may diff against
// previous outputs. Rule IDs never contain '@', which keeps the pair
// collision-free.
func OccurrenceID(ruleID string, date core.Date) string {
	return ruleID + "@" + date.ISO()
}

// Expand turns a set of recurring rules into the concrete transactions
// they produce within the given month (one-based). Inactive rules are
// skipped, as are rules whose shape is invalid for their frequency or
// whose [start, end] window does not overlap the month; a bad rule
// never aborts the rest of the batch.
//
// The result is ordered ascending by date; same-date occurrences keep
// the input order of their rules.
func Expand(rules []core.RecurringRule, year, month int) []core.Transaction {
	first := core.FirstOfMonth(year, month)
	last := core.LastOfMonth(year, month)

	var out []core.Transaction
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if err := rule.Validate(); err != nil {
			slog.Warn("Skipping malformed recurring rule", "rule_id", rule.ID, "error", err)
			continue
		}
		// Cheap window pre-check before generating any dates.
		if !rule.EndDate.IsZero() && rule.EndDate.Before(first) {
			continue
		}
		if rule.StartDate.After(last) {
			continue
		}

		sched, err := GetScheduler(rule.Frequency)
		if err != nil {
			// Validate already rejects unknown frequencies.
			continue
		}
		for _, d := range sched.DatesIn(rule, first, last) {
			out = append(out, core.Transaction{
				ID:         OccurrenceID(rule.ID, d),
				Date:       d,
				Kind:       rule.Kind,
				Amount:     rule.Amount,
				Note:       rule.Note,
				Provenance: core.Recurring,
				RuleID:     rule.ID,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
