package calculator

import (
	"sort"
	"time"

	"FuyouSentinel/internal/model"
)

// MonthTotal is the summed earnings of one YYYY-MM bucket.
type MonthTotal struct {
	Key      string
	Earnings float64
}

// WorkplaceTotals is the aggregate of a single workplace's shifts.
type WorkplaceTotals struct {
	ShiftCount int
	Hours      float64
	Earnings   float64
}

// MonthsBetween returns the calendar-month difference from then to now,
// ignoring the day of month. Future dates yield negative values.
func MonthsBetween(then, now time.Time) int {
	return (now.Year()-then.Year())*12 + int(now.Month()) - int(then.Month())
}

// TrailingWindow is the projection look-back in calendar months.
const TrailingWindow = 3

// TrailingMonthlyTotals groups shifts dated within the last `window` calendar
// months (inclusive of the current month) by YYYY-MM and sums their earnings.
// The result is in chronological order. Shifts with unparsable dates are skipped.
func TrailingMonthlyTotals(shifts []model.Shift, now time.Time, window int) []MonthTotal {
	totals := make(map[string]float64)
	for _, s := range shifts {
		t, ok := model.ParseDate(s.Date)
		if !ok {
			continue
		}
		ago := MonthsBetween(t, now)
		if ago < 0 || ago > window {
			continue
		}
		totals[t.Format(model.MonthLayout)] += s.Earnings
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthTotal, len(keys))
	for i, k := range keys {
		out[i] = MonthTotal{Key: k, Earnings: totals[k]}
	}
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SumEarnings adds up the earnings of all shifts.
func SumEarnings(shifts []model.Shift) float64 {
	sum := 0.0
	for _, s := range shifts {
		sum += s.Earnings
	}
	return sum
}

// EarningsInMonth sums the earnings of shifts whose date falls in monthKey.
func EarningsInMonth(shifts []model.Shift, monthKey string) float64 {
	sum := 0.0
	for _, s := range shifts {
		if k, ok := s.MonthKey(); ok && k == monthKey {
			sum += s.Earnings
		}
	}
	return sum
}

// TotalsByWorkplace aggregates shift count, hours and earnings per workplace ID.
func TotalsByWorkplace(shifts []model.Shift) map[string]WorkplaceTotals {
	out := make(map[string]WorkplaceTotals)
	for _, s := range shifts {
		t := out[s.WorkplaceID]
		t.ShiftCount++
		t.Hours += s.Hours
		t.Earnings += s.Earnings
		out[s.WorkplaceID] = t
	}
	return out
}
