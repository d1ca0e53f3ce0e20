package calculator

import (
	"sort"
	"time"

	"FuyouSentinel/internal/model"
)

// DatesInMonth returns the parsed dates of shifts that fall in monthKey, in
// input order. Duplicate dates are kept.
func DatesInMonth(shifts []model.Shift, monthKey string) []time.Time {
	var dates []time.Time
	for _, s := range shifts {
		t, ok := model.ParseDate(s.Date)
		if !ok || t.Format(model.MonthLayout) != monthKey {
			continue
		}
		dates = append(dates, t)
	}
	return dates
}

// LongestStreak sorts the dates and returns the longest run in which each
// date is exactly one day after the previous one. The list is not
// deduplicated: a repeated date has a zero-day gap and restarts the run.
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}
