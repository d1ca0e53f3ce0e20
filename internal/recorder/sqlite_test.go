package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/model"
)

func TestSQLiteRecorder_ReportHistory(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	e := engine.New(engine.DefaultLimits(), engine.FixedClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	for i, income := range []float64{500000, 950000} {
		rep := e.GenerateDetailedReport(income, nil, nil)
		require.NoError(t, rec.RecordReport(&ReportSnapshot{
			ReportID:    []string{"r1", "r2"}[i],
			Trigger:     "DAILY",
			GeneratedAt: time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC),
			Report:      rep,
		}))
	}

	history, err := rec.History(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "r2", history[0].ReportID)
	assert.Equal(t, model.RiskWarning, history[0].RiskLevel)
	assert.Equal(t, 500000.0, history[1].CurrentIncome)
}

func TestSQLiteRecorder_Alerts(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.RecordAlerts(nil))
	require.NoError(t, rec.RecordAlerts([]AlertEvent{
		{ReportID: "r1", Alert: model.Alert{Type: model.AlertCritical, Title: "扶養限度額に到達間近"}, Notified: true},
		{ReportID: "r1", Alert: model.Alert{Type: model.AlertInfo, Title: "連続勤務"}},
	}))
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordReport(&ReportSnapshot{}))
	h, err := rec.History(5)
	assert.NoError(t, err)
	assert.Empty(t, h)
}
