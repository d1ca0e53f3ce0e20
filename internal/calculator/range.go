package calculator

import (
	"errors"
	"math"
)

// MonthlyRange returns the highest and lowest bucket totals.
func MonthlyRange(months []MonthTotal) (high, low float64, err error) {
	if len(months) == 0 {
		return 0, 0, errors.New("no monthly totals provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, m := range months {
		if m.Earnings > high {
			high = m.Earnings
		}
		if m.Earnings < low {
			low = m.Earnings
		}
	}
	return high, low, nil
}

// Progress returns value/limit. A non-positive limit yields 0.
func Progress(value, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return value / limit
}
