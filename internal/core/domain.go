package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	TransactionType string

	// Transaction is a single record as supplied by the transaction source.
	// Date is kept in its source form (dd/mm/yyyy); the aggregation pipeline
	// parses it.
	Transaction struct {
		ID             int64           `json:"id"`
		Label          string          `json:"transaction"`
		Value          decimal.Decimal `json:"value"`
		Type           TransactionType `json:"type"`
		Category       string          `json:"category"`
		Date           string          `json:"date"`
		EffectiveValue decimal.Decimal `json:"effectiveValue"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
	}

	SpendingAlert struct {
		ID          string          `json:"id"`
		Category    string          `json:"category"`
		LimitAmount decimal.Decimal `json:"limitAmount"`
		Enabled     bool            `json:"enabled"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidTarget   = errors.New("target amount must be greater than zero")
	ErrInvalidLimit    = errors.New("limit amount must be greater than zero")
	ErrNegativeCurrent = errors.New("current amount cannot be negative")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownType     = errors.New("unknown transaction type")
)

// ValidationError reports which field of a goal or alert was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseTransactionType accepts the canonical names and the Portuguese labels
// used by the dashboard export ("Receita", "Despesa").
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "receita":
		return Income, nil
	case "expense", "despesa":
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// UnmarshalText normalises known labels and keeps any other label as given,
// so one unexpected record never fails a whole decode. Aggregation counts
// such records as expense.
func (t *TransactionType) UnmarshalText(b []byte) error {
	parsed, err := ParseTransactionType(string(b))
	if err != nil {
		*t = TransactionType(strings.TrimSpace(string(b)))
		return nil
	}
	*t = parsed
	return nil
}

// IsIncome reports whether the record counts towards income. Every other
// value, including unknown ones, counts as expense.
func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if !g.TargetAmount.IsPositive() {
		return &ValidationError{Field: "targetAmount", Err: ErrInvalidTarget}
	}
	if g.CurrentAmount.IsNegative() {
		return &ValidationError{Field: "currentAmount", Err: ErrNegativeCurrent}
	}
	return nil
}

func (a SpendingAlert) Validate() error {
	if strings.TrimSpace(a.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if !a.LimitAmount.IsPositive() {
		return &ValidationError{Field: "limitAmount", Err: ErrInvalidLimit}
	}
	return nil
}
