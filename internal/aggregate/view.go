package aggregate

import (
	"time"

	"insights/internal/core"
)

// View bundles every chart input derived from one transaction list and a
// selected window.
type View struct {
	Window   core.TimeWindow          `json:"window"`
	Series   []core.DailyAggregate    `json:"series"`
	Windowed []core.DailyAggregate    `json:"windowed"`
	Totals   [2]core.CategoryTotal    `json:"totals"`
	Weekdays [7]core.WeekdayAggregate `json:"weekdays"`
	Report
}

// BuildView runs the full pipeline: daily aggregation, windowing, then the
// category and weekday summaries over the windowed data.
func BuildView(records []core.Transaction, window core.TimeWindow, now time.Time) View {
	if !window.IsValid() {
		window = core.DefaultWindow
	}

	series, report := AggregateDailyWithReport(records, now)
	windowed := ApplyTimeWindow(series, window)

	return View{
		Window:   window,
		Series:   series,
		Windowed: windowed,
		Totals:   ToCategoryTotals(windowed),
		Weekdays: ToWeekdayAggregates(windowed),
		Report:   report,
	}
}
