package recorder

import (
	"time"

	"FuyouSentinel/internal/model"
)

// ReportSnapshot holds one generated report and where it came from.
type ReportSnapshot struct {
	ReportID    string
	Trigger     string // "DAILY", "MONTHLY", "COMMAND", "API"
	GeneratedAt time.Time
	Report      *model.Report
}

// AlertEvent records an alert that was delivered to the user.
type AlertEvent struct {
	ReportID string
	Alert    model.Alert
	Notified bool
}

// HistoryPoint is one row of the income history.
type HistoryPoint struct {
	ReportID          string
	GeneratedAt       time.Time
	CurrentIncome     float64
	RiskLevel         model.RiskLevel
	DependentProgress float64
	Realistic         float64
}

// Recorder persists report history for later analysis.
type Recorder interface {
	RecordReport(snap *ReportSnapshot) error
	RecordAlerts(evts []AlertEvent) error
	History(limit int) ([]HistoryPoint, error)
	Close() error
}
