// Package memory is an in-memory ledger backend for development and
// tests. Data lives for the process lifetime only.
package memory

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	txs      map[string]core.Transaction
	rules    map[string]core.RecurringRule
	ruleSeq  []string          // preserves rule insertion order for deterministic expansion
	imported map[string]string // external feed ref -> transaction ID
	balance  core.Money
}

func New(startingBalance core.Money) *Store {
	return &Store{
		txs:      make(map[string]core.Transaction),
		rules:    make(map[string]core.RecurringRule),
		imported: make(map[string]string),
		balance:  startingBalance,
	}
}

// NewFromFiles seeds the starting balance from
// <base>/starting_balance.txt when present (a single decimal amount).
func NewFromFiles(base string) *Store {
	balance := core.Money{}
	if line := readFirstLine(filepath.Join(base, "starting_balance.txt")); line != "" {
		if cents, err := core.ParseDecimalToCents(line); err == nil {
			balance = core.Money{Cents: cents}
		}
	}
	return New(balance)
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[tx.ID] = tx
	return tx.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.txs[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) UpsertImportedTransaction(_ context.Context, externalRef string, tx core.Transaction) (string, error) {
	if externalRef == "" {
		return "", errors.New("imported transaction needs an external reference")
	}
	tx.Provenance = core.Imported
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.imported[externalRef]; ok {
		tx.ID = id
	} else if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.txs[tx.ID] = tx
	s.imported[externalRef] = tx.ID
	return tx.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, year, month int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.Date.Year == year && tx.Date.Month == month {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *Store) CreateRule(_ context.Context, rule core.RecurringRule) (string, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := rule.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[rule.ID]; !ok {
		s.ruleSeq = append(s.ruleSeq, rule.ID)
	}
	s.rules[rule.ID] = rule
	return rule.ID, nil
}

func (s *Store) UpdateRule(_ context.Context, rule core.RecurringRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[rule.ID]; !ok {
		return ledger.ErrNotFound
	}
	s.rules[rule.ID] = rule
	return nil
}

func (s *Store) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return ledger.ErrNotFound
	}
	delete(s.rules, id)
	for i, rid := range s.ruleSeq {
		if rid == id {
			s.ruleSeq = append(s.ruleSeq[:i], s.ruleSeq[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListRules(_ context.Context) ([]core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringRule, 0, len(s.ruleSeq))
	for _, id := range s.ruleSeq {
		out = append(out, s.rules[id])
	}
	return out, nil
}

func (s *Store) StartingBalance(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

func (s *Store) SetStartingBalance(_ context.Context, balance core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = balance
	return nil
}

func readFirstLine(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}
