package collector

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/model"
)

var now = time.Date(2025, 5, 20, 21, 0, 0, 0, time.UTC)

func TestCollect_IncomeCountsCurrentYearOnly(t *testing.T) {
	src := &MockSource{
		Shifts: []model.Shift{
			{Date: "2024-12-31", WorkplaceID: "a", Earnings: 99999},
			{Date: "2025-01-04", WorkplaceID: "a", Earnings: 8000},
			{Date: "2025-05-20", WorkplaceID: "b", Earnings: 12000},
			{Date: "2025-05-21", WorkplaceID: "a", Earnings: 7000},
		},
		Workplaces: []model.Workplace{{ID: "a", HourlyWage: 1000}, {ID: "b", HourlyWage: 1200}},
	}
	snap, err := NewCollector(src, nil).Collect(now)
	require.NoError(t, err)

	assert.Equal(t, 2025, snap.Year)
	assert.Len(t, snap.Shifts, 2, "May's window starts at January 1")
	assert.Equal(t, 20000.0, snap.CurrentIncome)
	assert.Len(t, snap.Workplaces, 2)
}

func TestCollect_JanuaryKeepsPreviousQuarter(t *testing.T) {
	jan := time.Date(2026, 1, 5, 21, 0, 0, 0, time.UTC)
	src := &MockSource{
		Shifts: []model.Shift{
			{Date: "2025-09-30", WorkplaceID: "a", Earnings: 70000},
			{Date: "2025-10-01", WorkplaceID: "a", Earnings: 60000},
			{Date: "2025-11-10", WorkplaceID: "a", Earnings: 90000},
			{Date: "2025-12-10", WorkplaceID: "a", Earnings: 90000},
			{Date: "2026-01-03", WorkplaceID: "a", Earnings: 5000},
		},
		Workplaces: []model.Workplace{{ID: "a", HourlyWage: 1000}},
	}
	snap, err := NewCollector(src, nil).Collect(jan)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, snap.CurrentIncome)
	assert.Len(t, snap.Shifts, 4, "October through January")
	assert.Equal(t, "2025-10-01", snap.Shifts[0].Date)

	p := engine.New(engine.DefaultLimits(), engine.FixedClock(jan)).PredictYearEnd(snap.CurrentIncome, snap.Shifts)
	assert.Equal(t, 90000.0, p.MonthlyAverages.Highest)
	assert.InDelta(t, 61250, p.MonthlyAverages.Average, 1e-6)
	assert.Equal(t, 5000.0, p.MonthlyAverages.Recent)
}

func TestWindowStart(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "2025-10-01"},
		{time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), "2025-12-01"},
		{time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "2026-01-01"},
		{time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), "2026-01-01"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WindowStart(tt.now).Format(model.DateLayout), tt.now.String())
	}
}

func TestCollect_SourceError(t *testing.T) {
	src := &MockSource{Err: errors.New("boom")}
	_, err := NewCollector(src, nil).Collect(now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch shifts")
}

func TestRESTSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		switch r.URL.Path {
		case "/api/shifts":
			w.Write([]byte(`[
				{"date":"2025-03-02","workplaceId":"a","earnings":6000,"hours":6},
				{"start_time":"2025-03-01T09:00:00+09:00","workplaceId":"a","earnings":5000,"hours":5}
			]`))
		case "/api/workplaces":
			w.Write([]byte(`[{"id":"a","name":"カフェ","hourlyWage":1000}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewRESTSource(srv.URL, "secret", "u1", "")
	shifts, err := src.FetchShifts(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, "2025-03-01T09:00:00+09:00", shifts[0].Date)
	assert.Equal(t, 6000.0, shifts[1].Earnings)

	workplaces, err := src.FetchWorkplaces()
	require.NoError(t, err)
	require.Len(t, workplaces, 1)
	assert.Equal(t, 1000.0, workplaces[0].HourlyWage)
}

func TestRESTSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewRESTSource(srv.URL, "", "u1", "").FetchWorkplaces()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"currentIncome": 500000,
		"shifts": [{"date":"2025-02-01","workplaceId":"a","earnings":9000,"hours":9}],
		"workplaces": [{"id":"a","name":"塾","hourlyWage":1500}]
	}`), 0644))

	exp, err := LoadExport(path)
	require.NoError(t, err)
	require.NotNil(t, exp.CurrentIncome)
	assert.Equal(t, 500000.0, *exp.CurrentIncome)

	snap, err := NewCollector(NewFileSource(path), nil).Collect(now)
	require.NoError(t, err)
	assert.Equal(t, 500000.0, snap.CurrentIncome, "reported income wins over the shift sum")
	assert.Len(t, snap.Shifts, 1)
	assert.Equal(t, "塾", snap.Workplaces[0].Name)
}
