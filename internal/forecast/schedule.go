// Package forecast is the recurrence expansion and cashflow projection
// engine. Both entry points (Expand, Project) are pure functions over
// immutable inputs: they hold no state between calls, perform no I/O and
// are safe for concurrent use.
//
// Each frequency (weekly, fortnightly, monthly) has its own scheduler
// that encapsulates the calendar arithmetic for laying occurrences into
// a target month.
package forecast

import (
	"fmt"

	"saldo/internal/core"
)

// Scheduler is the strategy interface for placing a rule's occurrence
// dates inside one calendar month.
type Scheduler interface {
	// DatesIn returns the rule's occurrence dates within [first, last],
	// ascending. first and last bound the target month; callers
	// guarantee the rule's [start, end] window overlaps it.
	DatesIn(rule core.RecurringRule, first, last core.Date) []core.Date
}

// MonthlyScheduler implements Scheduler for monthly rules: one
// occurrence at the rule's day-of-month, clamped to the last day of
// shorter months (31 -> 28/29/30).
type MonthlyScheduler struct{}

func (MonthlyScheduler) DatesIn(rule core.RecurringRule, first, last core.Date) []core.Date {
	day := rule.DayOfMonth
	if day > last.Day {
		day = last.Day
	}
	d := core.NewDate(first.Year, first.Month, day)
	if d.Before(rule.StartDate) {
		return nil
	}
	if !rule.EndDate.IsZero() && d.After(rule.EndDate) {
		return nil
	}
	return []core.Date{d}
}

// WeeklyScheduler implements Scheduler for weekly rules. The cadence is
// anchored to the rule's start date: a date only qualifies when it
// matches the rule's weekday AND lies a whole number of weeks after the
// start. A rule whose start date is not on its own weekday therefore
// never fires; validation at creation time is expected to catch that.
type WeeklyScheduler struct{}

func (WeeklyScheduler) DatesIn(rule core.RecurringRule, first, last core.Date) []core.Date {
	// First date in the month on the rule's weekday.
	d := first
	for d.Weekday() != rule.Weekday {
		d = d.AddDays(1)
	}

	var out []core.Date
	for ; !d.After(last); d = d.AddDays(7) {
		if d.Before(rule.StartDate) {
			continue
		}
		if !rule.EndDate.IsZero() && d.After(rule.EndDate) {
			break
		}
		if d.DaysSince(rule.StartDate)%7 != 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FortnightlyScheduler implements Scheduler for fortnightly rules: walk
// forward from the start date in 14-day steps, fast-forwarding to the
// target month, then emit while still inside it.
type FortnightlyScheduler struct{}

func (FortnightlyScheduler) DatesIn(rule core.RecurringRule, first, last core.Date) []core.Date {
	d := rule.StartDate
	if d.Before(first) {
		steps := first.DaysSince(d) / 14
		d = d.AddDays(steps * 14)
		if d.Before(first) {
			d = d.AddDays(14)
		}
	}

	var out []core.Date
	for ; !d.After(last); d = d.AddDays(14) {
		if !rule.EndDate.IsZero() && d.After(rule.EndDate) {
			break
		}
		out = append(out, d)
	}
	return out
}

// schedulers maps each frequency to its scheduler. The set is closed:
// expansion rejects any frequency not registered here.
var schedulers = map[core.Frequency]Scheduler{
	core.Weekly:      WeeklyScheduler{},
	core.Fortnightly: FortnightlyScheduler{},
	core.Monthly:     MonthlyScheduler{},
}

// GetScheduler returns the scheduler for a frequency, or an error for
// an unknown one.
func GetScheduler(frequency core.Frequency) (Scheduler, error) {
	s, ok := schedulers[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return s, nil
}
