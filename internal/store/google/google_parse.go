package google

import (
	"fmt"
	"strconv"
	"strings"

	"insights/internal/core"
)

var (
	goalHeader  = []string{"ID", "Name", "TargetAmount", "CurrentAmount"}
	alertHeader = []string{"ID", "Category", "LimitAmount", "Enabled"}
)

// parseTransactions converts a values matrix (as returned by Sheets API) into
// transactions. The first row must be a header containing at least Value,
// Type and Date; ID, Label, Category and EffectiveValue are optional. Rows
// whose value or type cannot be read are skipped and counted. Dates are kept
// verbatim for the aggregation pipeline to parse.
func parseTransactions(values [][]interface{}) ([]core.Transaction, int, error) {
	if len(values) == 0 {
		return nil, 0, nil
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "ID")
	colLabel := indexOf(headers, "Label")
	colValue := indexOf(headers, "Value")
	colType := indexOf(headers, "Type")
	colCategory := indexOf(headers, "Category")
	colDate := indexOf(headers, "Date")
	colEffective := indexOf(headers, "EffectiveValue")
	if colValue == -1 || colType == -1 || colDate == -1 {
		return nil, 0, fmt.Errorf("unexpected transactions header: %v", headers)
	}

	var (
		out     []core.Transaction
		skipped int
	)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		value, err := core.ParseAmount(safeGet(row, colValue))
		if err != nil {
			skipped++
			continue
		}
		typ, err := core.ParseTransactionType(safeGet(row, colType))
		if err != nil {
			skipped++
			continue
		}
		id := int64(i)
		if v, err := strconv.ParseInt(safeGet(row, colID), 10, 64); err == nil {
			id = v
		}
		tx := core.Transaction{
			ID:       id,
			Label:    safeGet(row, colLabel),
			Value:    value,
			Type:     typ,
			Category: safeGet(row, colCategory),
			Date:     safeGet(row, colDate),
		}
		if eff, err := core.ParseAmount(safeGet(row, colEffective)); err == nil {
			tx.EffectiveValue = eff
		}
		out = append(out, tx)
	}
	return out, skipped, nil
}

func parseGoals(values [][]interface{}) ([]core.SavingsGoal, error) {
	var out []core.SavingsGoal
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) || (i == 0 && isHeader(row)) {
			continue
		}
		target, err := core.ParseAmount(safeGet(row, 2))
		if err != nil {
			return nil, fmt.Errorf("goal row %d: target: %w", i+1, err)
		}
		current, err := core.ParseAmount(safeGet(row, 3))
		if err != nil {
			return nil, fmt.Errorf("goal row %d: current: %w", i+1, err)
		}
		out = append(out, core.SavingsGoal{
			ID:            safeGet(row, 0),
			Name:          safeGet(row, 1),
			TargetAmount:  target,
			CurrentAmount: current,
		})
	}
	return out, nil
}

func parseAlerts(values [][]interface{}) ([]core.SpendingAlert, error) {
	var out []core.SpendingAlert
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) || (i == 0 && isHeader(row)) {
			continue
		}
		limit, err := core.ParseAmount(safeGet(row, 2))
		if err != nil {
			return nil, fmt.Errorf("alert row %d: limit: %w", i+1, err)
		}
		enabled, err := strconv.ParseBool(safeGet(row, 3))
		if err != nil {
			return nil, fmt.Errorf("alert row %d: enabled: %w", i+1, err)
		}
		out = append(out, core.SpendingAlert{
			ID:          safeGet(row, 0),
			Category:    safeGet(row, 1),
			LimitAmount: limit,
			Enabled:     enabled,
		})
	}
	return out, nil
}

func encodeGoals(goals []core.SavingsGoal) [][]interface{} {
	rows := [][]interface{}{toRow(goalHeader)}
	for _, g := range goals {
		rows = append(rows, []interface{}{g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String()})
	}
	return rows
}

func encodeAlerts(alerts []core.SpendingAlert) [][]interface{} {
	rows := [][]interface{}{toRow(alertHeader)}
	for _, a := range alerts {
		rows = append(rows, []interface{}{a.ID, a.Category, a.LimitAmount.String(), strconv.FormatBool(a.Enabled)})
	}
	return rows
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toRow(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func isHeader(row []string) bool {
	return strings.EqualFold(safeGet(row, 0), "ID")
}
