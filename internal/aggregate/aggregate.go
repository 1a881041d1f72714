// Package aggregate turns flat transaction lists into the daily, windowed,
// category and weekday views used by the dashboard charts.
//
// None of the functions return errors: malformed records degrade to default
// values instead of failing the whole pipeline.
package aggregate

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"insights/internal/core"
)

// Report lists the records whose date could not be parsed and were
// accumulated into the fallback day.
type Report struct {
	FallbackIDs []int64 `json:"fallbackIds,omitempty"`
}

// AggregateDaily sums records per calendar day and returns one entry per
// distinct day, ascending. Values are added as stored; no sign normalization
// is applied.
func AggregateDaily(records []core.Transaction) []core.DailyAggregate {
	series, _ := AggregateDailyWithReport(records, time.Now())
	return series
}

// AggregateDailyWithReport is AggregateDaily with an explicit clock for the
// malformed-date fallback and a report of the records that used it.
func AggregateDailyWithReport(records []core.Transaction, now time.Time) ([]core.DailyAggregate, Report) {
	var report Report
	byDay := make(map[civil.Date]*core.DailyAggregate, len(records))

	for _, r := range records {
		parsed := ParseTransactionDate(r.Date, now)
		if parsed.Fallback {
			report.FallbackIDs = append(report.FallbackIDs, r.ID)
		}

		day, ok := byDay[parsed.Date]
		if !ok {
			day = &core.DailyAggregate{Date: parsed.Date, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[parsed.Date] = day
		}
		if r.IsIncome() {
			day.Income = day.Income.Add(r.Value)
		} else {
			day.Expense = day.Expense.Add(r.Value)
		}
	}

	series := make([]core.DailyAggregate, 0, len(byDay))
	for _, day := range byDay {
		series = append(series, *day)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series, report
}

// ApplyTimeWindow keeps the entries dated on or after the last entry's date
// minus the window length. The series must be sorted ascending, as returned
// by AggregateDaily.
func ApplyTimeWindow(series []core.DailyAggregate, window core.TimeWindow) []core.DailyAggregate {
	if len(series) == 0 {
		return []core.DailyAggregate{}
	}

	ref := series[len(series)-1].Date
	start := ref.AddDays(-window.Days())

	out := make([]core.DailyAggregate, 0, len(series))
	for _, d := range series {
		if !d.Date.Before(start) {
			out = append(out, d)
		}
	}
	return out
}

// ToCategoryTotals sums the series into the Income and Expense totals, in
// that order.
func ToCategoryTotals(series []core.DailyAggregate) [2]core.CategoryTotal {
	income, expense := decimal.Zero, decimal.Zero
	for _, d := range series {
		income = income.Add(d.Income)
		expense = expense.Add(d.Expense)
	}
	return [2]core.CategoryTotal{
		{Name: core.IncomeTotalName, Value: income},
		{Name: core.ExpenseTotalName, Value: expense},
	}
}

// ToWeekdayAggregates buckets the series by weekday. All seven buckets,
// Sunday first, are present even when empty.
func ToWeekdayAggregates(series []core.DailyAggregate) [7]core.WeekdayAggregate {
	var buckets [7]core.WeekdayAggregate
	for i := range buckets {
		buckets[i] = core.WeekdayAggregate{
			Weekday: time.Weekday(i),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	for _, d := range series {
		wd := midnight(d.Date).Weekday()
		buckets[wd].Income = buckets[wd].Income.Add(d.Income)
		buckets[wd].Expense = buckets[wd].Expense.Add(d.Expense)
	}
	return buckets
}
