package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"insights/internal/amqp"
	applog "insights/internal/log"
	"insights/internal/personalization"
	"insights/internal/store"
)

// AlertWorker re-evaluates enabled spending alerts whenever settings change
// and on a fixed interval, and logs every alert found over its limit.
type AlertWorker struct {
	engine *personalization.Engine
	source store.TransactionSource
	log    *applog.StructuredLogger
}

func NewAlertWorker(engine *personalization.Engine, source store.TransactionSource, logger *applog.Logger) *AlertWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &AlertWorker{
		engine: engine,
		source: source,
		log:    applog.NewStructuredLogger(logger.WithComponent(applog.ComponentWorker)),
	}
}

// HandleSettingsChanged reloads goals and alerts from the store and runs a
// check. Returning an error makes the consumer requeue the message.
func (w *AlertWorker) HandleSettingsChanged(ctx context.Context, msg *amqp.SettingsChangedMessage) error {
	change := msg.Change()
	slog.InfoContext(ctx, "Processing settings change",
		"kind", change.Kind,
		"op", change.Op,
		"id", change.ID,
		"changed_at", change.At)

	if err := w.engine.Load(ctx); err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	if _, err := w.Check(ctx); err != nil {
		return err
	}
	return nil
}

// Check evaluates every enabled alert against all transactions and returns
// the ones over their limit.
func (w *AlertWorker) Check(ctx context.Context) ([]personalization.AlertStatus, error) {
	txs, err := w.source.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	statuses := w.engine.EvaluateAlerts(txs)
	var breached []personalization.AlertStatus
	for _, s := range statuses {
		if !s.OverLimit {
			continue
		}
		breached = append(breached, s)
		w.log.LogAlertBreached(ctx, s.Alert.ID, s.Alert.Category, s.Spent, s.Alert.LimitAmount, s.Excess, s.Percentage)
	}

	slog.InfoContext(ctx, "Alert check completed",
		"transactions", len(txs),
		"evaluated", len(statuses),
		"breached", len(breached))

	return breached, nil
}

// Run performs a startup check and then one check per interval until ctx
// is cancelled. Failed checks are logged and retried on the next tick.
func (w *AlertWorker) Run(ctx context.Context, interval time.Duration) error {
	w.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *AlertWorker) tick(ctx context.Context) {
	if err := w.engine.Load(ctx); err != nil {
		w.log.LogError(ctx, "Periodic settings reload failed", err, applog.ComponentWorker, applog.OpRead, nil)
		return
	}
	if _, err := w.Check(ctx); err != nil {
		w.log.LogError(ctx, "Periodic alert check failed", err, applog.ComponentWorker, applog.OpEvaluate, nil)
	}
}
