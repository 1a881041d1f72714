package google

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/internal/core"
)

func TestParseTransactions(t *testing.T) {
	values := [][]interface{}{
		{"ID", "Label", "Value", "Type", "Category", "Date", "EffectiveValue"},
		{"1", "Salário", "1.000,00", "Receita", "Salário", "01/01/2024", "1000"},
		{"2", "Feira", "200", "Despesa", "Mercado", "01/01/2024", "-200"},
		{},
		{"3", "Broken", "abc", "Despesa", "Mercado", "02/01/2024"},
		{"4", "Unknown", "10", "Transfer", "Mercado", "02/01/2024"},
		{"", "No id", 50, "Expense", "Mercado", "02/01/2024"},
	}

	txs, skipped, err := parseTransactions(values)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, txs, 3)

	assert.Equal(t, int64(1), txs[0].ID)
	assert.Equal(t, core.Income, txs[0].Type)
	assert.True(t, txs[0].Value.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "01/01/2024", txs[0].Date)
	assert.True(t, txs[1].EffectiveValue.Equal(decimal.NewFromInt(-200)))

	// Missing ID falls back to the row index.
	assert.Equal(t, int64(6), txs[2].ID)
	assert.True(t, txs[2].Value.Equal(decimal.NewFromInt(50)))
}

func TestParseTransactionsHeaderErrors(t *testing.T) {
	txs, skipped, err := parseTransactions(nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Zero(t, skipped)

	_, _, err = parseTransactions([][]interface{}{{"ID", "Label", "Category"}})
	assert.ErrorContains(t, err, "unexpected transactions header")
}

func TestGoalsRoundTrip(t *testing.T) {
	goals := []core.SavingsGoal{
		{ID: "g1", Name: "Viagem", TargetAmount: decimal.RequireFromString("3000.50"), CurrentAmount: decimal.Zero},
		{ID: "g2", Name: "Carro", TargetAmount: decimal.NewFromInt(50000), CurrentAmount: decimal.NewFromInt(1200)},
	}
	rows := encodeGoals(goals)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])

	got, err := parseGoals(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range goals {
		assert.Equal(t, goals[i].ID, got[i].ID)
		assert.Equal(t, goals[i].Name, got[i].Name)
		assert.True(t, goals[i].TargetAmount.Equal(got[i].TargetAmount))
		assert.True(t, goals[i].CurrentAmount.Equal(got[i].CurrentAmount))
	}
}

func TestAlertsRoundTrip(t *testing.T) {
	alerts := []core.SpendingAlert{
		{ID: "a1", Category: "Mercado", LimitAmount: decimal.NewFromInt(300), Enabled: true},
		{ID: "a2", Category: "Casa", LimitAmount: decimal.RequireFromString("99.9"), Enabled: false},
	}
	got, err := parseAlerts(encodeAlerts(alerts))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Enabled)
	assert.False(t, got[1].Enabled)
	assert.Equal(t, "Casa", got[1].Category)
	assert.True(t, got[1].LimitAmount.Equal(decimal.RequireFromString("99.9")))
}

func TestParseAlertsRejectsBadRows(t *testing.T) {
	_, err := parseAlerts([][]interface{}{{"a1", "Mercado", "300", "maybe"}})
	assert.ErrorContains(t, err, "enabled")

	_, err = parseGoals([][]interface{}{{"ID", "Name", "TargetAmount", "CurrentAmount"}, {"g1", "x", "", "0"}})
	assert.ErrorContains(t, err, "target")
}
