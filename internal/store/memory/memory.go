package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"insights/internal/core"
	"insights/internal/store"
)

// TransactionsFile is the seed file read by NewFromFiles.
const TransactionsFile = "transactions.json"

// Ensure interface conformance
var (
	_ store.GoalStore         = (*Store)(nil)
	_ store.AlertStore        = (*Store)(nil)
	_ store.TransactionSource = (*Store)(nil)
)

type Store struct {
	mu     sync.Mutex
	txs    []core.Transaction
	goals  []core.SavingsGoal
	alerts []core.SpendingAlert
}

func New(txs []core.Transaction) *Store {
	return &Store{txs: slices.Clone(txs)}
}

// NewFromFiles seeds the transaction list from base/transactions.json. A
// missing file yields an empty store.
func NewFromFiles(base string) (*Store, error) {
	txs, err := readTransactions(filepath.Join(base, TransactionsFile))
	if err != nil {
		return nil, err
	}
	return New(txs), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs), nil
}

func (s *Store) LoadGoals(_ context.Context) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.goals), nil
}

func (s *Store) SaveGoals(_ context.Context, goals []core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = slices.Clone(goals)
	return nil
}

func (s *Store) LoadAlerts(_ context.Context) ([]core.SpendingAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.alerts), nil
}

func (s *Store) SaveAlerts(_ context.Context, alerts []core.SpendingAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = slices.Clone(alerts)
	return nil
}

func readTransactions(path string) ([]core.Transaction, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(b, &txs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return txs, nil
}
