package model

import "time"

// DateLayout is the ISO calendar date format used for shift dates.
const DateLayout = "2006-01-02"

// MonthLayout formats the YYYY-MM bucket keys.
const MonthLayout = "2006-01"

// Shift is one worked shift as recorded by the calendar or OCR upload.
type Shift struct {
	Date        string  `json:"date"`
	WorkplaceID string  `json:"workplaceId"`
	Earnings    float64 `json:"earnings"`
	Hours       float64 `json:"hours"`
}

// Workplace is an employer entry from the workplace registry.
type Workplace struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyWage float64 `json:"hourlyWage"`
}

// ParseDate parses a shift date. Full RFC3339 timestamps are accepted and
// truncated to their calendar date.
func ParseDate(s string) (time.Time, bool) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey returns the YYYY-MM bucket of a shift date, or false when the
// date cannot be parsed.
func (s Shift) MonthKey() (string, bool) {
	t, ok := ParseDate(s.Date)
	if !ok {
		return "", false
	}
	return t.Format(MonthLayout), true
}
