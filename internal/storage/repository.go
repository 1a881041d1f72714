package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"insights/internal/core"
	"insights/internal/store"

	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var (
	_ store.GoalStore         = (*SQLiteRepository)(nil)
	_ store.AlertStore        = (*SQLiteRepository)(nil)
	_ store.TransactionSource = (*SQLiteRepository)(nil)
	_ store.TransactionWriter = (*SQLiteRepository)(nil)
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

// ListTransactions implements store.TransactionSource
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, value, type, category, date, effective_value FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t   core.Transaction
			typ string
		)
		if err := rows.Scan(&t.ID, &t.Label, &t.Value, &typ, &t.Category, &t.Date, &t.EffectiveValue); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// InsertTransactions upserts transactions by id. Used for seeding and imports.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO transactions (id, label, value, type, category, date, effective_value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert transaction: %w", err)
		}
		defer stmt.Close()

		for _, t := range txs {
			if _, err := stmt.ExecContext(ctx, t.ID, t.Label, t.Value, string(t.Type), t.Category, t.Date, t.EffectiveValue); err != nil {
				return fmt.Errorf("insert transaction %d: %w", t.ID, err)
			}
		}
		slog.InfoContext(ctx, "Transactions stored in SQLite", "count", len(txs))
		return nil
	})
}

// LoadGoals implements store.GoalStore
func (r *SQLiteRepository) LoadGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount FROM savings_goals ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// SaveGoals implements store.GoalStore. The whole table is replaced in one
// transaction.
func (r *SQLiteRepository) SaveGoals(ctx context.Context, goals []core.SavingsGoal) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM savings_goals`); err != nil {
			return fmt.Errorf("clear goals: %w", err)
		}
		for i, g := range goals {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO savings_goals (id, position, name, target_amount, current_amount) VALUES (?, ?, ?, ?, ?)`,
				g.ID, i, g.Name, g.TargetAmount, g.CurrentAmount); err != nil {
				return fmt.Errorf("insert goal %s: %w", g.ID, err)
			}
		}
		return nil
	})
}

// LoadAlerts implements store.AlertStore
func (r *SQLiteRepository) LoadAlerts(ctx context.Context) ([]core.SpendingAlert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, limit_amount, enabled FROM spending_alerts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []core.SpendingAlert
	for rows.Next() {
		var a core.SpendingAlert
		if err := rows.Scan(&a.ID, &a.Category, &a.LimitAmount, &a.Enabled); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

// SaveAlerts implements store.AlertStore. The UNIQUE constraint on category
// backs the one-alert-per-category rule.
func (r *SQLiteRepository) SaveAlerts(ctx context.Context, alerts []core.SpendingAlert) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM spending_alerts`); err != nil {
			return fmt.Errorf("clear alerts: %w", err)
		}
		for i, a := range alerts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO spending_alerts (id, position, category, limit_amount, enabled) VALUES (?, ?, ?, ?, ?)`,
				a.ID, i, a.Category, a.LimitAmount, a.Enabled); err != nil {
				return fmt.Errorf("insert alert %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
