package model

import "time"

// LedgerState tracks what the sentinel has already observed and notified
// for the current tax year.
type LedgerState struct {
	Year          int       `json:"year"`
	LastIncome    float64   `json:"last_income"`
	LastRiskLevel RiskLevel `json:"last_risk_level"`

	// NotifiedRiskLevel is the tier the user was last told about. It only
	// rises after a successful delivery and drops as soon as risk falls.
	NotifiedRiskLevel RiskLevel         `json:"notified_risk_level"`
	NotifiedMonth     string            `json:"notified_month"`
	NotifiedAlerts    map[string]string `json:"notified_alerts"` // title -> alert type

	RecentIncomes    []float64 `json:"recent_incomes"`
	DangerStreakDays int       `json:"danger_streak_days"`
	LastCheckAt      time.Time `json:"last_check_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
