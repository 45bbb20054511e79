package core

import (
	"errors"
	"strings"
)

const (
	Income  TxKind = "income"
	Expense TxKind = "expense"
)

const (
	Manual    Provenance = "manual"
	Recurring Provenance = "recurring"
	Imported  Provenance = "imported"
)

const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
)

type (
	// TxKind is the direction of a cash movement. The sign of an amount
	// is carried by the kind, never by the stored value.
	TxKind string

	// Provenance records where a transaction came from. Recurring
	// transactions are derived on demand and never persisted.
	Provenance string

	// Frequency is the cadence of a recurring rule.
	Frequency string

	// Transaction is a single dated cash movement.
	Transaction struct {
		ID         string
		Date       Date
		Kind       TxKind
		Amount     Money // non-negative
		Note       string
		Provenance Provenance
		RuleID     string // set only when Provenance == Recurring
	}

	// RecurringRule produces zero or more transactions per month.
	// Weekday is consulted for weekly rules, DayOfMonth for monthly
	// rules; fortnightly rules take their weekday from StartDate.
	RecurringRule struct {
		ID         string
		Kind       TxKind
		Amount     Money // non-negative
		Note       string
		Frequency  Frequency
		StartDate  Date
		EndDate    Date // zero = open-ended
		Weekday    int  // 0=Sunday .. 6=Saturday
		DayOfMonth int  // 1-31, clamped to short months
		Active     bool
	}

	// CashflowSnapshot is one day of a monthly projection.
	CashflowSnapshot struct {
		Date           Date
		DailyDelta     Money // signed: income minus expense for the day
		RunningBalance Money // signed: starting balance plus all prior deltas
	}
)

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidWeekday    = errors.New("weekday must be between 0 and 6")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrEndBeforeStart    = errors.New("end date must not be before start date")
	ErrInvalidProvenance = errors.New("invalid provenance")
	ErrRuleReference     = errors.New("rule reference only valid for recurring transactions")
	ErrNoteTooLong       = errors.New("note too long (max 200 characters)")
)

func (k TxKind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (p Provenance) Validate() error {
	switch p {
	case Manual, Recurring, Imported:
		return nil
	default:
		return ErrInvalidProvenance
	}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := t.Provenance.Validate(); err != nil {
		return err
	}
	if t.Provenance == Recurring && strings.TrimSpace(t.RuleID) == "" {
		return errors.New("recurring transaction must reference a rule")
	}
	if t.Provenance != Recurring && t.RuleID != "" {
		return ErrRuleReference
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}

	if !r.EndDate.IsZero() {
		if err := r.EndDate.Validate(); err != nil {
			return errors.New("invalid end date: " + err.Error())
		}
		if r.EndDate.Before(r.StartDate) {
			return ErrEndBeforeStart
		}
	}

	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if r.Amount.Cents < 0 {
		return ErrInvalidAmount
	}

	// Exactly the frequency-relevant day selector is meaningful.
	switch r.Frequency {
	case Weekly:
		if r.Weekday < 0 || r.Weekday > 6 {
			return ErrInvalidWeekday
		}
	case Fortnightly:
		// Cadence is anchored to StartDate; no selector required.
	case Monthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return ErrInvalidDayOfMonth
		}
	default:
		return ErrInvalidFrequency
	}

	if len(r.Note) > 200 {
		return ErrNoteTooLong
	}

	return nil
}
