package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"FuyouSentinel/internal/model"
)

// Yen renders an amount as ¥1,234,567.
func Yen(v float64) string {
	s := humanize.Comma(int64(math.Round(math.Abs(v))))
	if v < 0 && math.Round(math.Abs(v)) != 0 {
		return "-¥" + s
	}
	return "¥" + s
}

func riskBadge(level model.RiskLevel) string {
	switch level {
	case model.RiskDanger:
		return "🔴 危険"
	case model.RiskWarning:
		return "🟡 注意"
	default:
		return "🟢 安全"
	}
}

func alertIcon(t model.AlertType) string {
	switch t {
	case model.AlertCritical:
		return "🚨"
	case model.AlertWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// FormatStatus formats limit consumption at the current income.
func FormatStatus(income float64, st model.Status) string {
	var b strings.Builder
	b.WriteString("📦 <b>扶養ステータス</b>\n\n")
	b.WriteString(fmt.Sprintf("今年の収入: %s\n", Yen(income)))
	b.WriteString(fmt.Sprintf("リスク: %s\n", riskBadge(st.RiskLevel)))
	b.WriteString(fmt.Sprintf("扶養: %.1f%% (残り %s)\n", st.DependentProgress*100, Yen(st.DependentRemaining)))
	b.WriteString(fmt.Sprintf("社会保険: %.1f%% (残り %s)\n", st.SocialInsuranceProgress*100, Yen(st.SocialInsuranceRemaining)))
	b.WriteString(fmt.Sprintf("安全ラインまで: %s\n", Yen(st.SafetyMargin)))
	if st.IsOverLimit {
		b.WriteString("\n❗ 扶養限度額を超えています\n")
	}
	return b.String()
}

// FormatAlerts lists alerts, one block each. Empty input yields "".
func FormatAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🔔 <b>アラート</b>\n")
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("\n%s <b>%s</b>\n%s\n", alertIcon(a.Type), html.EscapeString(a.Title), html.EscapeString(a.Message)))
		for _, act := range a.Actions {
			b.WriteString(fmt.Sprintf("  • %s\n", html.EscapeString(act)))
		}
	}
	return b.String()
}

// FormatSuggestions lists optimization suggestions.
func FormatSuggestions(sugs []model.Suggestion) string {
	if len(sugs) == 0 {
		return "💡 現在の提案はありません\n"
	}
	var b strings.Builder
	b.WriteString("💡 <b>最適化の提案</b>\n")
	for _, s := range sugs {
		b.WriteString(fmt.Sprintf("\n[%s] <b>%s</b>\n%s\n", s.Priority, html.EscapeString(s.Title), html.EscapeString(s.Description)))
		for _, a := range s.Actions {
			b.WriteString(fmt.Sprintf("  • %s\n", html.EscapeString(a.Description)))
		}
		if s.Impact > 0 {
			b.WriteString(fmt.Sprintf("  効果: %s\n", Yen(s.Impact)))
		}
	}
	return b.String()
}

// FormatActionPlan formats the three-horizon action plan.
func FormatActionPlan(plan model.ActionPlan) string {
	var b strings.Builder
	b.WriteString("🗓 <b>アクションプラン</b>\n")
	section := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", label))
		for _, it := range items {
			b.WriteString(fmt.Sprintf("  • %s\n", html.EscapeString(it)))
		}
	}
	section("今すぐ", plan.Immediate)
	section("短期", plan.ShortTerm)
	section("長期", plan.LongTerm)
	return b.String()
}

// FormatReport formats a full daily report.
func FormatReport(r *model.Report, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>扶養レポート</b> | %s\n\n", now.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("今年の収入: %s\n", Yen(r.Summary.TotalIncome)))
	b.WriteString(fmt.Sprintf("残り枠: %s\n", Yen(r.Summary.RemainingBudget)))
	b.WriteString(fmt.Sprintf("リスク: %s\n\n", riskBadge(r.Summary.RiskLevel)))

	p := r.Prediction
	b.WriteString("📈 <b>年末予測:</b>\n")
	b.WriteString(fmt.Sprintf("  控えめ: %s (%s)\n", Yen(p.Scenarios.Conservative), p.RiskAssessment.Conservative))
	b.WriteString(fmt.Sprintf("  標準: %s (%s)\n", Yen(p.Scenarios.Realistic), p.RiskAssessment.Realistic))
	b.WriteString(fmt.Sprintf("  強気: %s (%s)\n", Yen(p.Scenarios.Optimistic), p.RiskAssessment.Optimistic))
	b.WriteString(fmt.Sprintf("  月の目安: %s (残り%dヶ月, トレンド ×%.2f)\n", Yen(p.MonthlyTarget), p.RemainingMonths, p.TrendMultiplier))

	if len(r.Optimization) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatSuggestions(r.Optimization))
	}
	if alerts := FormatAlerts(r.Alerts); alerts != "" {
		b.WriteString("\n")
		b.WriteString(alerts)
	}
	return b.String()
}

// FormatMonthlySummary formats the month-start recap.
func FormatMonthlySummary(r *model.Report, state model.LedgerState, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>月次サマリー</b> | %s\n\n", now.Format(model.MonthLayout)))
	b.WriteString(fmt.Sprintf("今年の収入: %s\n", Yen(r.Summary.TotalIncome)))
	b.WriteString(fmt.Sprintf("年末予測: %s\n", Yen(r.Summary.YearEndPrediction)))
	b.WriteString(fmt.Sprintf("月の目安: %s\n", Yen(r.Prediction.MonthlyTarget)))

	if n := len(state.RecentIncomes); n > 1 {
		delta := state.RecentIncomes[n-1] - state.RecentIncomes[0]
		b.WriteString(fmt.Sprintf("直近%d回のチェックでの増加: %s\n", n, Yen(delta)))
	}
	b.WriteString("\n")
	b.WriteString(FormatActionPlan(r.ActionPlan))
	return b.String()
}

// FormatEscalation announces a risk tier increase.
func FormatEscalation(from, to model.RiskLevel, income float64) string {
	return fmt.Sprintf("⬆️ <b>リスク上昇</b>: %s → %s\n今年の収入: %s", riskBadge(from), riskBadge(to), Yen(income))
}
