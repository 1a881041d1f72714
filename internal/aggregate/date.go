package aggregate

import (
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateResult is the outcome of parsing a transaction date. Fallback is set
// when the text could not be parsed and Date holds the substituted day.
type DateResult struct {
	Date     civil.Date
	Fallback bool
}

// ParseTransactionDate parses a dd/mm/yyyy string. Out-of-range components
// roll over the way time.Date normalizes them (31/02/2024 is 2024-03-02).
// Text that does not split into three integers yields today's date with
// Fallback set, so a bad record never aborts the pipeline. Years are taken
// literally ("24" is year 24) and a part with trailing junk ("2024x") is
// not an integer.
func ParseTransactionDate(text string, now time.Time) DateResult {
	parts := strings.Split(strings.TrimSpace(text), "/")
	if len(parts) != 3 {
		return fallback(now)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fallback(now)
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return DateResult{Date: civil.DateOf(t)}
}

func fallback(now time.Time) DateResult {
	return DateResult{Date: civil.DateOf(now), Fallback: true}
}

// midnight returns d at 00:00 UTC. Weekday and window arithmetic go through
// it so that the local zone never shifts a day.
func midnight(d civil.Date) time.Time {
	return d.In(time.UTC)
}
