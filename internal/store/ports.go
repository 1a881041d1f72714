package store

import (
	"context"

	"insights/internal/core"
)

// Ports for outbound adapters. Goal and alert stores use whole-collection
// semantics: Save replaces everything previously stored.
type (
	GoalStore interface {
		LoadGoals(ctx context.Context) ([]core.SavingsGoal, error)
		SaveGoals(ctx context.Context, goals []core.SavingsGoal) error
	}

	AlertStore interface {
		LoadAlerts(ctx context.Context) ([]core.SpendingAlert, error)
		SaveAlerts(ctx context.Context, alerts []core.SpendingAlert) error
	}

	// TransactionSource supplies the already-validated transaction list.
	TransactionSource interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionWriter upserts transactions by id.
	TransactionWriter interface {
		InsertTransactions(ctx context.Context, txs []core.Transaction) error
	}
)
