package personalization

import (
	"github.com/shopspring/decimal"

	"insights/internal/core"
)

var hundred = decimal.NewFromInt(100)

type (
	GoalStatus struct {
		Goal     core.SavingsGoal `json:"goal"`
		Progress float64          `json:"progress"`
	}

	AlertStatus struct {
		Alert      core.SpendingAlert `json:"alert"`
		Spent      decimal.Decimal    `json:"spent"`
		Percentage float64            `json:"percentage"`
		OverLimit  bool               `json:"overLimit"`
		// Excess is how much spending went past the limit; zero unless OverLimit.
		Excess decimal.Decimal `json:"excess"`
	}
)

// ComputeCategorySpending sums the absolute value of every expense in
// category. It always looks at the whole transaction list: alerts are
// lifetime-scoped, unlike the windowed chart views.
func ComputeCategorySpending(txs []core.Transaction, category string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == core.Expense && t.Category == category {
			total = total.Add(t.Value.Abs())
		}
	}
	return total
}

// GoalProgress returns current/target as a percentage clamped to [0, 100].
// A non-positive target yields 0.
func GoalProgress(goal core.SavingsGoal) float64 {
	return clampedPercentage(goal.CurrentAmount, goal.TargetAmount)
}

// EvaluateAlert compares lifetime spending in the alert's category with its
// limit.
func EvaluateAlert(alert core.SpendingAlert, txs []core.Transaction) AlertStatus {
	spent := ComputeCategorySpending(txs, alert.Category)
	status := AlertStatus{
		Alert:      alert,
		Spent:      spent,
		Percentage: clampedPercentage(spent, alert.LimitAmount),
		OverLimit:  spent.GreaterThan(alert.LimitAmount),
		Excess:     decimal.Zero,
	}
	if status.OverLimit {
		status.Excess = spent.Sub(alert.LimitAmount)
	}
	return status
}

func clampedPercentage(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	pct := part.Div(whole).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return 100
	}
	if pct.IsNegative() {
		return 0
	}
	return pct.InexactFloat64()
}
