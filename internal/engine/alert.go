package engine

import (
	"fmt"

	"FuyouSentinel/internal/calculator"
	"FuyouSentinel/internal/model"
)

const (
	socialInsuranceAlertRatio = 0.9
	monthlySpikeFactor        = 1.5
	maxConsecutiveDays        = 6
)

// GenerateAlerts runs the limit, social-insurance, monthly-spike and
// consecutive-workday checks. Each check is independent.
func (e *Engine) GenerateAlerts(currentIncome float64, shifts []model.Shift) []model.Alert {
	status := e.GetCurrentStatus(currentIncome)
	monthKey := e.clock.Now().Format(model.MonthLayout)

	alerts := []model.Alert{}

	switch status.RiskLevel {
	case model.RiskDanger:
		alerts = append(alerts, model.Alert{
			Type:    model.AlertCritical,
			Title:   "扶養限度額に到達間近",
			Message: fmt.Sprintf("扶養限度額の%.1f%%に達しています。残りは%.0f円です。", status.DependentProgress*100, status.DependentRemaining),
			Actions: []string{"今月以降のシフトを見直す", "勤務先に勤務時間の調整を相談する"},
		})
	case model.RiskWarning:
		alerts = append(alerts, model.Alert{
			Type:    model.AlertWarning,
			Title:   "扶養限度額に注意",
			Message: fmt.Sprintf("扶養限度額の%.1f%%に達しています。", status.DependentProgress*100),
			Actions: []string{"残りの月の勤務計画を立てる"},
		})
	}

	if status.SocialInsuranceProgress > socialInsuranceAlertRatio {
		alerts = append(alerts, model.Alert{
			Type:    model.AlertInfo,
			Title:   "社会保険の扶養ラインに接近",
			Message: fmt.Sprintf("社会保険の扶養ライン(%.0f円)の%.1f%%に達しています。", e.limits.SocialInsurance, status.SocialInsuranceProgress*100),
			Actions: []string{"勤務先の社会保険加入条件を確認する"},
		})
	}

	monthEarnings := calculator.EarningsInMonth(shifts, monthKey)
	if monthEarnings > e.limits.Dependent/12*monthlySpikeFactor {
		alerts = append(alerts, model.Alert{
			Type:    model.AlertWarning,
			Title:   "今月の収入が多め",
			Message: fmt.Sprintf("今月の収入は%.0f円で、月平均の目安を大きく上回っています。", monthEarnings),
			Actions: []string{"来月以降のシフトで調整する"},
		})
	}

	streak := calculator.LongestStreak(calculator.DatesInMonth(shifts, monthKey))
	if streak > maxConsecutiveDays {
		alerts = append(alerts, model.Alert{
			Type:    model.AlertInfo,
			Title:   "連続勤務",
			Message: fmt.Sprintf("今月は%d日連続で勤務しています。休息を取りましょう。", streak),
			Actions: []string{"休日を確保する"},
		})
	}

	return alerts
}
