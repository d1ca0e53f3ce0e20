package model

import "time"

// Summary is the headline of a report.
type Summary struct {
	TotalIncome       float64   `json:"totalIncome"`
	RemainingBudget   float64   `json:"remainingBudget"`
	RiskLevel         RiskLevel `json:"riskLevel"`
	YearEndPrediction float64   `json:"yearEndPrediction"`
}

// WorkplaceBreakdown aggregates the shifts of one workplace.
type WorkplaceBreakdown struct {
	Name               string  `json:"name,omitempty"`
	ShiftCount         int     `json:"shiftCount"`
	TotalHours         float64 `json:"totalHours"`
	TotalEarnings      float64 `json:"totalEarnings"`
	AverageShiftLength float64 `json:"averageShiftLength"`
}

// MonthBreakdown aggregates the shifts of one YYYY-MM month.
type MonthBreakdown struct {
	Earnings   float64 `json:"earnings"`
	Hours      float64 `json:"hours"`
	ShiftCount int     `json:"shiftCount"`
}

// Breakdown groups totals by workplace ID and by month key.
type Breakdown struct {
	ByWorkplace map[string]WorkplaceBreakdown `json:"byWorkplace"`
	ByMonth     map[string]MonthBreakdown     `json:"byMonth"`
}

// ActionPlan buckets actions by time horizon.
type ActionPlan struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"shortTerm"`
	LongTerm  []string `json:"longTerm"`
}

// Report is the comprehensive engine output.
type Report struct {
	Summary           Summary      `json:"summary"`
	Status            Status       `json:"status"`
	Prediction        Prediction   `json:"prediction"`
	Optimization      []Suggestion `json:"optimization"`
	Alerts            []Alert      `json:"alerts"`
	DetailedBreakdown Breakdown    `json:"detailedBreakdown"`
	ActionPlan        ActionPlan   `json:"actionPlan"`
}

// RiskAnalysis is the lighter status/prediction/advice view.
type RiskAnalysis struct {
	Status      Status       `json:"status"`
	Prediction  Prediction   `json:"prediction"`
	Suggestions []Suggestion `json:"suggestions"`
	Alerts      []Alert      `json:"alerts"`
}

// ReportEnvelope wraps a report with generation metadata.
type ReportEnvelope struct {
	ReportID    string    `json:"reportId"`
	GeneratedAt time.Time `json:"generatedAt"`
	DurationMs  int64     `json:"durationMs"`
	Report      *Report   `json:"report"`
}
