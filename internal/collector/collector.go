package collector

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"FuyouSentinel/internal/calculator"
	"FuyouSentinel/internal/model"
)

// MockSource returns fixed data for development and testing.
type MockSource struct {
	Shifts     []model.Shift
	Workplaces []model.Workplace
	Err        error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchShifts(from, to time.Time) ([]model.Shift, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return filterByDate(m.Shifts, from, to), nil
}

func (m *MockSource) FetchWorkplaces() ([]model.Workplace, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Workplaces, nil
}

// filterByDate keeps shifts dated in [from, to], compared by calendar date.
func filterByDate(shifts []model.Shift, from, to time.Time) []model.Shift {
	lo := from.Format(model.DateLayout)
	hi := to.Format(model.DateLayout)
	var out []model.Shift
	for _, s := range shifts {
		t, ok := model.ParseDate(s.Date)
		if !ok {
			continue
		}
		d := t.Format(model.DateLayout)
		if d >= lo && d <= hi {
			out = append(out, s)
		}
	}
	return out
}

// Snapshot is the engine input for one check.
type Snapshot struct {
	Year int
	// CurrentIncome is this year's income: the source's reported figure when
	// it has one, else the sum of this year's shift earnings.
	CurrentIncome float64
	// Shifts covers the projection window as well as this year, so in
	// January through March it also holds the previous year's last months.
	Shifts      []model.Shift
	Workplaces  []model.Workplace
	CollectedAt time.Time
}

// IncomeReporter is implemented by sources that carry an authoritative
// year-to-date income alongside the shifts.
type IncomeReporter interface {
	ReportedIncome() (float64, bool, error)
}

// Collector pulls the current year's data from a Source.
type Collector struct {
	Source Source
	Log    *logrus.Logger
}

// NewCollector creates a new Collector.
func NewCollector(source Source, log *logrus.Logger) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Collector{Source: source, Log: log}
}

// WindowStart is the earliest date a check needs: January 1 or the first
// day of the month three months back, whichever is earlier.
func WindowStart(now time.Time) time.Time {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	trailing := time.Date(now.Year(), now.Month()-calculator.TrailingWindow, 1, 0, 0, 0, 0, now.Location())
	if trailing.Before(yearStart) {
		return trailing
	}
	return yearStart
}

// Collect fetches shifts from WindowStart up to now plus the workplace registry.
func (c *Collector) Collect(now time.Time) (*Snapshot, error) {
	shifts, err := c.Source.FetchShifts(WindowStart(now), now)
	if err != nil {
		return nil, fmt.Errorf("fetch shifts: %w", err)
	}
	workplaces, err := c.Source.FetchWorkplaces()
	if err != nil {
		return nil, fmt.Errorf("fetch workplaces: %w", err)
	}

	known := make(map[string]bool, len(workplaces))
	for _, w := range workplaces {
		known[w.ID] = true
	}
	var yearShifts []model.Shift
	for _, s := range shifts {
		if !known[s.WorkplaceID] {
			c.Log.WithFields(logrus.Fields{"date": s.Date, "workplace_id": s.WorkplaceID}).
				Warn("shift references an unknown workplace")
		}
		if t, ok := model.ParseDate(s.Date); ok && t.Year() == now.Year() {
			yearShifts = append(yearShifts, s)
		}
	}

	income := calculator.SumEarnings(yearShifts)
	if r, ok := c.Source.(IncomeReporter); ok {
		reported, has, err := r.ReportedIncome()
		if err != nil {
			return nil, fmt.Errorf("reported income: %w", err)
		}
		if has {
			income = reported
		}
	}

	snap := &Snapshot{
		Year:          now.Year(),
		CurrentIncome: income,
		Shifts:        shifts,
		Workplaces:    workplaces,
		CollectedAt:   now,
	}
	c.Log.WithFields(logrus.Fields{
		"source":      c.Source.Name(),
		"shifts":      len(shifts),
		"year_shifts": len(yearShifts),
		"workplaces":  len(workplaces),
		"income":      snap.CurrentIncome,
	}).Debug("snapshot collected")
	return snap, nil
}
