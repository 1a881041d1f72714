package personalization

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"insights/internal/core"
)

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Date: "01/01/2024", Type: core.Income, Value: dec(1000), Category: "Salário"},
		{ID: 2, Date: "01/01/2024", Type: core.Expense, Value: dec(200), Category: "Mercado"},
		{ID: 3, Date: "02/01/2024", Type: core.Expense, Value: dec(50), Category: "Mercado"},
	}
}

func TestComputeCategorySpending(t *testing.T) {
	txs := sampleTransactions()
	assert.True(t, ComputeCategorySpending(txs, "Mercado").Equal(dec(250)))
	assert.True(t, ComputeCategorySpending(txs, "Salário").IsZero(), "income never counts")
	assert.True(t, ComputeCategorySpending(txs, "Casa").IsZero())
	assert.True(t, ComputeCategorySpending(nil, "Mercado").IsZero())
}

func TestComputeCategorySpendingUsesAbsoluteValues(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Expense, Value: dec(-120), Category: "Casa"},
		{Type: core.Expense, Value: dec(30), Category: "Casa"},
	}
	assert.True(t, ComputeCategorySpending(txs, "Casa").Equal(dec(150)))
}

// Alerts are lifetime-scoped on purpose: spending months apart still counts,
// even though the chart views would window it out.
func TestComputeCategorySpendingIsLifetimeScoped(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Expense, Value: dec(100), Category: "Casa", Date: "01/01/2020"},
		{Type: core.Expense, Value: dec(100), Category: "Casa", Date: "01/01/2024"},
	}
	assert.True(t, ComputeCategorySpending(txs, "Casa").Equal(dec(200)))
}

func TestGoalProgress(t *testing.T) {
	cases := []struct {
		name            string
		target, current int64
		want            float64
	}{
		{"half", 1000, 500, 50},
		{"clamped", 1000, 1200, 100},
		{"exact", 1000, 1000, 100},
		{"empty", 1000, 0, 0},
		{"zero target", 0, 50, 0},
		{"negative target", -10, 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GoalProgress(core.SavingsGoal{TargetAmount: dec(tc.target), CurrentAmount: dec(tc.current)})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateAlert(t *testing.T) {
	under := EvaluateAlert(core.SpendingAlert{Category: "Mercado", LimitAmount: dec(1000), Enabled: true}, sampleTransactions())
	assert.True(t, under.Spent.Equal(dec(250)))
	assert.Equal(t, 25.0, under.Percentage)
	assert.False(t, under.OverLimit)
	assert.True(t, under.Excess.IsZero())

	exact := EvaluateAlert(core.SpendingAlert{Category: "Mercado", LimitAmount: dec(250)}, sampleTransactions())
	assert.False(t, exact.OverLimit, "reaching the limit is not exceeding it")
	assert.Equal(t, 100.0, exact.Percentage)

	over := EvaluateAlert(core.SpendingAlert{Category: "Mercado", LimitAmount: decimal.RequireFromString("99.5")}, sampleTransactions())
	assert.True(t, over.OverLimit)
	assert.Equal(t, 100.0, over.Percentage)
	assert.True(t, over.Excess.Equal(decimal.RequireFromString("150.5")))
}

func TestCategories(t *testing.T) {
	txs := append(sampleTransactions(), core.Transaction{Category: "Viagem"}, core.Transaction{Category: " "})
	cats := Categories(txs)

	assert.Contains(t, cats, "Viagem")
	assert.Contains(t, cats, "Mercado")
	assert.Len(t, cats, len(DefaultCategories)+1)
	assert.IsNonDecreasing(t, cats)
}
