package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights/internal/core"
)

func TestBuildView(t *testing.T) {
	records := append(sampleRecords(),
		tx(4, "20/03/2024", core.Expense, 80, "Internet"),
		tx(5, "25/03/2024", core.Income, 500, "Depósito"),
	)

	v := BuildView(records, core.Week, fixedNow)

	assert.Equal(t, core.Week, v.Window)
	require.Len(t, v.Series, 4)
	require.Len(t, v.Windowed, 2)
	assertDecimal(t, 500, v.Totals[0].Value)
	assertDecimal(t, 80, v.Totals[1].Value)
	assert.Empty(t, v.FallbackIDs)

	// 2024-03-20 is a Wednesday, 2024-03-25 a Monday.
	assertDecimal(t, 80, v.Weekdays[time.Wednesday].Expense)
	assertDecimal(t, 500, v.Weekdays[time.Monday].Income)
}

func TestBuildViewInvalidWindowUsesDefault(t *testing.T) {
	v := BuildView(sampleRecords(), core.TimeWindow("bogus"), fixedNow)
	assert.Equal(t, core.DefaultWindow, v.Window)
	assert.Len(t, v.Windowed, 2)
}

func TestBuildViewEmpty(t *testing.T) {
	v := BuildView(nil, core.Month, fixedNow)
	assert.Empty(t, v.Series)
	assert.Empty(t, v.Windowed)
	assert.Len(t, v.Weekdays, 7)
	assertDecimal(t, 0, v.Totals[0].Value)
}
