package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"insights/internal/core"
)

func TestMemoryStoreGoalsAndAlerts(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	goals := []core.SavingsGoal{{ID: "g1", Name: "Carro", TargetAmount: decimal.NewFromInt(10)}}
	if err := s.SaveGoals(ctx, goals); err != nil {
		t.Fatalf("save goals: %v", err)
	}
	goals[0].Name = "mutated"

	got, err := s.LoadGoals(ctx)
	if err != nil || len(got) != 1 || got[0].Name != "Carro" {
		t.Fatalf("unexpected goals: %v err=%v", got, err)
	}

	if err := s.SaveAlerts(ctx, []core.SpendingAlert{{ID: "a1", Category: "Casa"}, {ID: "a2", Category: "Mercado"}}); err != nil {
		t.Fatalf("save alerts: %v", err)
	}
	// Whole-collection replace.
	if err := s.SaveAlerts(ctx, []core.SpendingAlert{{ID: "a2", Category: "Mercado"}}); err != nil {
		t.Fatalf("save alerts: %v", err)
	}
	alerts, _ := s.LoadAlerts(ctx)
	if len(alerts) != 1 || alerts[0].ID != "a2" {
		t.Fatalf("unexpected alerts: %v", alerts)
	}
}

func TestNewFromFilesSeedsTransactions(t *testing.T) {
	dir := t.TempDir()

	// No file -> empty store
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs, _ := s.ListTransactions(context.Background())
	if len(txs) != 0 {
		t.Fatalf("expected empty store, got %d", len(txs))
	}

	content := `[
  {"id":1,"transaction":"Salário","value":1000,"type":"Receita","category":"Salário","date":"01/01/2024","effectiveValue":1000},
  {"id":2,"transaction":"Feira","value":"200.50","type":"Expense","category":"Mercado","date":"01/01/2024","effectiveValue":-200.5}
]`
	if err := os.WriteFile(filepath.Join(dir, TransactionsFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs, _ = s.ListTransactions(context.Background())
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Type != core.Income || txs[1].Type != core.Expense {
		t.Fatalf("unexpected types: %v %v", txs[0].Type, txs[1].Type)
	}
	if !txs[1].Value.Equal(decimal.RequireFromString("200.5")) {
		t.Fatalf("unexpected value: %s", txs[1].Value)
	}
}

func TestNewFromFilesToleratesUnknownType(t *testing.T) {
	dir := t.TempDir()
	content := `[
  {"id":1,"transaction":"Feira","value":50,"type":"Despesa","category":"Mercado","date":"02/01/2024"},
  {"id":2,"transaction":"Pix","value":80,"type":"Transferencia","category":"Casa","date":"02/01/2024"}
]`
	if err := os.WriteFile(filepath.Join(dir, TransactionsFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	txs, _ := s.ListTransactions(context.Background())
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[1].IsIncome() {
		t.Fatalf("unknown type should count as expense, got %v", txs[1].Type)
	}
}

func TestNewFromFilesRejectsMalformedSeed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TransactionsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}
