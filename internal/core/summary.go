package core

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	Week    TimeWindow = "7d"
	Month   TimeWindow = "30d"
	Quarter TimeWindow = "90d"

	// DefaultWindow is the window selected when none is requested.
	DefaultWindow = Quarter
)

// Names of the two fixed category totals.
const (
	IncomeTotalName  = "Income"
	ExpenseTotalName = "Expense"
)

type (
	// TimeWindow is a trailing span of days, anchored at the latest date of a
	// daily series rather than the wall clock.
	TimeWindow string

	// DailyAggregate sums every record falling on Date.
	DailyAggregate struct {
		Date    civil.Date      `json:"date"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}

	// CategoryTotal drives the pie and radial summaries.
	CategoryTotal struct {
		Name  string          `json:"name"`
		Value decimal.Decimal `json:"value"`
	}

	WeekdayAggregate struct {
		Weekday time.Weekday    `json:"weekday"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}
)

// Days returns the number of days covered by the window.
func (w TimeWindow) Days() int {
	switch w {
	case Week:
		return 7
	case Month:
		return 30
	case Quarter:
		return 90
	default:
		return 0
	}
}

func (w TimeWindow) IsValid() bool {
	return w.Days() > 0
}

func (w TimeWindow) String() string {
	return string(w)
}

// ParseTimeWindow accepts "7d", "30d", "90d" and the names week, month and
// quarter. An empty string selects DefaultWindow.
func ParseTimeWindow(s string) (TimeWindow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultWindow, nil
	case "7d", "week":
		return Week, nil
	case "30d", "month":
		return Month, nil
	case "90d", "quarter":
		return Quarter, nil
	default:
		return "", fmt.Errorf("unknown time window %q", s)
	}
}

// TimeWindows lists the supported windows from shortest to longest.
func TimeWindows() []TimeWindow {
	return []TimeWindow{Week, Month, Quarter}
}
