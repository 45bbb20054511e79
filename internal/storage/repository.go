// Package storage is the SQLite ledger backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction implements ledger.TransactionWriter.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, tx_date, kind, amount_cents, note, provenance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.ISO(), string(tx.Kind), tx.Amount.Cents, tx.Note, string(tx.Provenance))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"date", tx.Date.ISO(),
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"provenance", tx.Provenance)

	return tx.ID, nil
}

// UpsertImportedTransaction stores a bank-feed transaction keyed by its
// feed reference. Replaying the same feed record updates the existing
// row instead of duplicating it.
func (r *SQLiteRepository) UpsertImportedTransaction(ctx context.Context, externalRef string, tx core.Transaction) (string, error) {
	if externalRef == "" {
		return "", errors.New("imported transaction needs an external reference")
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Provenance = core.Imported
	if err := tx.Validate(); err != nil {
		return "", err
	}

	var existing string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM transactions WHERE external_ref = ?`, externalRef).Scan(&existing)
	switch {
	case err == nil:
		_, err = r.db.ExecContext(ctx, `
			UPDATE transactions
			SET tx_date = ?, kind = ?, amount_cents = ?, note = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			tx.Date.ISO(), string(tx.Kind), tx.Amount.Cents, tx.Note, existing)
		if err != nil {
			return "", fmt.Errorf("update imported transaction: %w", err)
		}
		return existing, nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO transactions (id, tx_date, kind, amount_cents, note, provenance, external_ref)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.Date.ISO(), string(tx.Kind), tx.Amount.Cents, tx.Note, string(core.Imported), externalRef)
		if err != nil {
			return "", fmt.Errorf("insert imported transaction: %w", err)
		}
		slog.InfoContext(ctx, "Imported transaction saved",
			"id", tx.ID, "external_ref", externalRef, "date", tx.Date.ISO())
		return tx.ID, nil
	default:
		return "", fmt.Errorf("lookup imported transaction: %w", err)
	}
}

// UpdateTransaction implements ledger.TransactionWriter.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET tx_date = ?, kind = ?, amount_cents = ?, note = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		tx.Date.ISO(), string(tx.Kind), tx.Amount.Cents, tx.Note, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

// DeleteTransaction implements ledger.TransactionWriter.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// GetTransaction implements ledger.TransactionReader.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tx_date, kind, amount_cents, note, provenance
		FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions implements ledger.TransactionReader.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	first := core.FirstOfMonth(year, month)
	last := core.LastOfMonth(year, month)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tx_date, kind, amount_cents, note, provenance
		FROM transactions
		WHERE tx_date >= ? AND tx_date <= ?
		ORDER BY tx_date, created_at, id`,
		first.ISO(), last.ISO())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// CreateRule implements ledger.RuleWriter.
func (r *SQLiteRepository) CreateRule(ctx context.Context, rule core.RecurringRule) (string, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := rule.Validate(); err != nil {
		return "", err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_rules
			(id, kind, amount_cents, note, frequency, start_date, end_date, weekday, day_of_month, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, string(rule.Kind), rule.Amount.Cents, rule.Note, string(rule.Frequency),
		rule.StartDate.ISO(), nullableDate(rule.EndDate), rule.Weekday, rule.DayOfMonth,
		boolToInt(rule.Active))
	if err != nil {
		return "", fmt.Errorf("insert rule: %w", err)
	}

	slog.InfoContext(ctx, "Recurring rule saved",
		"id", rule.ID, "frequency", rule.Frequency, "amount_cents", rule.Amount.Cents)

	return rule.ID, nil
}

// UpdateRule implements ledger.RuleWriter. Edits take effect both
// retroactively and prospectively because occurrences are derived
// fresh on every projection.
func (r *SQLiteRepository) UpdateRule(ctx context.Context, rule core.RecurringRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_rules
		SET kind = ?, amount_cents = ?, note = ?, frequency = ?, start_date = ?,
			end_date = ?, weekday = ?, day_of_month = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(rule.Kind), rule.Amount.Cents, rule.Note, string(rule.Frequency),
		rule.StartDate.ISO(), nullableDate(rule.EndDate), rule.Weekday, rule.DayOfMonth,
		boolToInt(rule.Active), rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return requireRow(res)
}

// DeleteRule implements ledger.RuleWriter.
func (r *SQLiteRepository) DeleteRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return requireRow(res)
}

// ListRules implements ledger.RuleReader. Creation order is preserved
// so same-date expansion ties stay deterministic.
func (r *SQLiteRepository) ListRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, amount_cents, note, frequency, start_date, end_date, weekday, day_of_month, active
		FROM recurring_rules
		ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringRule
	for rows.Next() {
		var (
			rule      core.RecurringRule
			kind      string
			frequency string
			startDate string
			endDate   sql.NullString
			active    int
		)
		if err := rows.Scan(&rule.ID, &kind, &rule.Amount.Cents, &rule.Note, &frequency,
			&startDate, &endDate, &rule.Weekday, &rule.DayOfMonth, &active); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule.Kind = core.TxKind(kind)
		rule.Frequency = core.Frequency(frequency)
		rule.Active = active != 0
		if rule.StartDate, err = core.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
		}
		if endDate.Valid && endDate.String != "" {
			if rule.EndDate, err = core.ParseDate(endDate.String); err != nil {
				return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
			}
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// StartingBalance implements ledger.SettingsReader.
func (r *SQLiteRepository) StartingBalance(ctx context.Context) (core.Money, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'starting_balance_cents'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("read starting balance: %w", err)
	}
	cents, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return core.Money{}, fmt.Errorf("parse starting balance %q: %w", value, err)
	}
	return core.Money{Cents: cents}, nil
}

// SetStartingBalance implements ledger.SettingsWriter.
func (r *SQLiteRepository) SetStartingBalance(ctx context.Context, balance core.Money) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ('starting_balance_cents', ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		strconv.FormatInt(balance.Cents, 10))
	if err != nil {
		return fmt.Errorf("set starting balance: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		date       string
		kind       string
		provenance string
	)
	if err := row.Scan(&tx.ID, &date, &kind, &tx.Amount.Cents, &tx.Note, &provenance); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = parsed
	tx.Kind = core.TxKind(kind)
	tx.Provenance = core.Provenance(provenance)
	return tx, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func nullableDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.ISO()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
