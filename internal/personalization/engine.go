// Package personalization manages savings goals and spending alerts: their
// lifecycle, their live status against transactions, and their persistence
// through whole-collection stores.
package personalization

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"insights/internal/core"
	"insights/internal/store"
)

// Notifier is told about every persisted mutation.
type Notifier interface {
	NotifySettingsChanged(ctx context.Context, change core.SettingsChange) error
}

type (
	GoalDraft struct {
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
	}

	AlertDraft struct {
		Category    string          `json:"category"`
		LimitAmount decimal.Decimal `json:"limitAmount"`
	}
)

// Engine owns the in-memory goal and alert collections. Mutations are
// serialised; each one saves the full updated collection before it becomes
// visible, so a failed save leaves the engine unchanged. Notifications are
// sent after the lock is released.
type Engine struct {
	goalStore  store.GoalStore
	alertStore store.AlertStore
	notifier   Notifier

	mu     sync.Mutex
	goals  []core.SavingsGoal
	alerts []core.SpendingAlert

	newID func() string
	now   func() time.Time
}

func NewEngine(goals store.GoalStore, alerts store.AlertStore, notifier Notifier) *Engine {
	return &Engine{
		goalStore:  goals,
		alertStore: alerts,
		notifier:   notifier,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Load replaces the in-memory collections with the stored ones.
func (e *Engine) Load(ctx context.Context) error {
	var (
		goals  []core.SavingsGoal
		alerts []core.SpendingAlert
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = e.goalStore.LoadGoals(gctx)
		if err != nil {
			return fmt.Errorf("load goals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		alerts, err = e.alertStore.LoadAlerts(gctx)
		if err != nil {
			return fmt.Errorf("load alerts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	e.mu.Lock()
	e.goals = goals
	e.alerts = alerts
	e.mu.Unlock()

	slog.DebugContext(ctx, "Personalization state loaded", "goals", len(goals), "alerts", len(alerts))
	return nil
}

// Goals returns a copy of the goal collection.
func (e *Engine) Goals() []core.SavingsGoal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.goals)
}

// Alerts returns a copy of the alert collection, disabled alerts included.
func (e *Engine) Alerts() []core.SpendingAlert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.alerts)
}

// GoalStatuses pairs every goal with its progress.
func (e *Engine) GoalStatuses() []GoalStatus {
	goals := e.Goals()
	out := make([]GoalStatus, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalStatus{Goal: g, Progress: GoalProgress(g)})
	}
	return out
}

// EvaluateAlerts returns the status of every enabled alert, in stored order.
func (e *Engine) EvaluateAlerts(txs []core.Transaction) []AlertStatus {
	alerts := e.Alerts()
	out := make([]AlertStatus, 0, len(alerts))
	for _, a := range alerts {
		if !a.Enabled {
			continue
		}
		out = append(out, EvaluateAlert(a, txs))
	}
	return out
}

// CreateGoal validates the draft, appends a new goal and persists the
// collection.
func (e *Engine) CreateGoal(ctx context.Context, draft GoalDraft) (core.SavingsGoal, error) {
	goal := core.SavingsGoal{
		ID:            e.newID(),
		Name:          strings.TrimSpace(draft.Name),
		TargetAmount:  draft.TargetAmount,
		CurrentAmount: draft.CurrentAmount,
	}
	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	e.mu.Lock()
	updated := append(slices.Clone(e.goals), goal)
	if err := e.goalStore.SaveGoals(ctx, updated); err != nil {
		e.mu.Unlock()
		return core.SavingsGoal{}, fmt.Errorf("save goals: %w", err)
	}
	e.goals = updated
	e.mu.Unlock()

	slog.InfoContext(ctx, "Savings goal created", "id", goal.ID, "name", goal.Name, "target", goal.TargetAmount.String())
	e.notify(ctx, core.KindGoal, core.OpCreate, goal.ID)
	return goal, nil
}

// UpdateGoal replaces the fields of an existing goal. An unknown id is a
// no-op and reports found=false.
func (e *Engine) UpdateGoal(ctx context.Context, id string, draft GoalDraft) (goal core.SavingsGoal, found bool, err error) {
	candidate := core.SavingsGoal{
		ID:            id,
		Name:          strings.TrimSpace(draft.Name),
		TargetAmount:  draft.TargetAmount,
		CurrentAmount: draft.CurrentAmount,
	}
	if err := candidate.Validate(); err != nil {
		return core.SavingsGoal{}, false, err
	}

	e.mu.Lock()
	idx := slices.IndexFunc(e.goals, func(g core.SavingsGoal) bool { return g.ID == id })
	if idx < 0 {
		e.mu.Unlock()
		return core.SavingsGoal{}, false, nil
	}

	updated := slices.Clone(e.goals)
	updated[idx] = candidate
	if err := e.goalStore.SaveGoals(ctx, updated); err != nil {
		e.mu.Unlock()
		return core.SavingsGoal{}, true, fmt.Errorf("save goals: %w", err)
	}
	e.goals = updated
	e.mu.Unlock()

	e.notify(ctx, core.KindGoal, core.OpUpdate, id)
	return candidate, true, nil
}

// UpsertAlert keeps at most one alert per category: an existing alert gets
// the new limit and is re-enabled in place, otherwise a new enabled alert is
// appended.
func (e *Engine) UpsertAlert(ctx context.Context, draft AlertDraft) (core.SpendingAlert, error) {
	category := strings.TrimSpace(draft.Category)
	if err := (core.SpendingAlert{Category: category, LimitAmount: draft.LimitAmount}).Validate(); err != nil {
		return core.SpendingAlert{}, err
	}

	e.mu.Lock()
	updated := slices.Clone(e.alerts)
	op := core.OpUpdate
	idx := slices.IndexFunc(updated, func(a core.SpendingAlert) bool { return a.Category == category })
	if idx >= 0 {
		updated[idx].LimitAmount = draft.LimitAmount
		updated[idx].Enabled = true
	} else {
		op = core.OpCreate
		updated = append(updated, core.SpendingAlert{
			ID:          e.newID(),
			Category:    category,
			LimitAmount: draft.LimitAmount,
			Enabled:     true,
		})
		idx = len(updated) - 1
	}

	if err := e.alertStore.SaveAlerts(ctx, updated); err != nil {
		e.mu.Unlock()
		return core.SpendingAlert{}, fmt.Errorf("save alerts: %w", err)
	}
	e.alerts = updated
	alert := updated[idx]
	e.mu.Unlock()

	slog.InfoContext(ctx, "Spending alert saved", "id", alert.ID, "category", alert.Category, "limit", alert.LimitAmount.String(), "op", op)
	e.notify(ctx, core.KindAlert, op, alert.ID)
	return alert, nil
}

// SetAlertEnabled flips the enabled flag of the alert with the given id and
// returns the updated collection. An unknown id changes nothing and saves
// nothing.
func (e *Engine) SetAlertEnabled(ctx context.Context, id string, enabled bool) ([]core.SpendingAlert, error) {
	e.mu.Lock()
	idx := slices.IndexFunc(e.alerts, func(a core.SpendingAlert) bool { return a.ID == id })
	if idx < 0 {
		current := slices.Clone(e.alerts)
		e.mu.Unlock()
		return current, nil
	}

	updated := slices.Clone(e.alerts)
	updated[idx].Enabled = enabled
	if err := e.alertStore.SaveAlerts(ctx, updated); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("save alerts: %w", err)
	}
	e.alerts = updated
	e.mu.Unlock()

	e.notify(ctx, core.KindAlert, core.OpToggle, id)
	return slices.Clone(updated), nil
}

// notify runs without e.mu held; a slow broker must not block readers.
func (e *Engine) notify(ctx context.Context, kind core.SettingsKind, op core.SettingsOp, id string) {
	if e.notifier == nil {
		return
	}
	change := core.SettingsChange{Kind: kind, Op: op, ID: id, At: e.now()}
	if err := e.notifier.NotifySettingsChanged(ctx, change); err != nil {
		// The mutation is already persisted.
		slog.ErrorContext(ctx, "Failed to publish settings change", "kind", kind, "op", op, "id", id, "error", err)
	}
}
