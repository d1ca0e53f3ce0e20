package engine

import (
	"fmt"
	"math"
	"sort"

	"FuyouSentinel/internal/calculator"
	"FuyouSentinel/internal/model"
)

const (
	// time optimization: wage gap and hours moved per month
	timeOptimizationGap   = 1.2
	timeOptimizationHours = 10.0

	// workplace balance: adjacent wage gap, share of hours moved, budget horizon
	balanceGap         = 1.15
	balanceShare       = 0.3
	balanceBudgetMonth = 3.0
)

// workplaceStats joins a workplace with the totals of its shifts.
type workplaceStats struct {
	model.Workplace
	calculator.WorkplaceTotals
}

func (w workplaceStats) label() string {
	if w.Name != "" {
		return w.Name
	}
	return w.ID
}

// rankByWage returns the workplaces with their shift totals, highest wage first.
func rankByWage(shifts []model.Shift, workplaces []model.Workplace) []workplaceStats {
	totals := calculator.TotalsByWorkplace(shifts)
	ranked := make([]workplaceStats, len(workplaces))
	for i, w := range workplaces {
		ranked[i] = workplaceStats{Workplace: w, WorkplaceTotals: totals[w.ID]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].HourlyWage > ranked[j].HourlyWage })
	return ranked
}

// GenerateOptimizationSuggestions returns the income-reduction,
// time-optimization and workplace-balance suggestions, in that order.
func (e *Engine) GenerateOptimizationSuggestions(currentIncome float64, shifts []model.Shift, workplaces []model.Workplace) []model.Suggestion {
	status := e.GetCurrentStatus(currentIncome)
	ranked := rankByWage(shifts, workplaces)

	suggestions := []model.Suggestion{}
	if s, ok := e.incomeReduction(currentIncome, status, ranked); ok {
		suggestions = append(suggestions, s)
	}
	if s, ok := timeOptimization(ranked); ok {
		suggestions = append(suggestions, s)
	}
	if len(workplaces) > 1 {
		suggestions = append(suggestions, workplaceBalance(status, ranked)...)
	}
	return suggestions
}

// incomeReduction cuts the excess over the 90% line from the lowest-wage
// workplace first, keeping the better-paid hours.
func (e *Engine) incomeReduction(currentIncome float64, status model.Status, ranked []workplaceStats) (model.Suggestion, bool) {
	if status.RiskLevel == model.RiskSafe || len(ranked) == 0 {
		return model.Suggestion{}, false
	}
	excess := currentIncome - e.limits.Dependent*safetyLine
	lowest := ranked[len(ranked)-1]
	if excess <= 0 || lowest.HourlyWage <= 0 {
		return model.Suggestion{}, false
	}
	hours := math.Ceil(excess / lowest.HourlyWage)

	return model.Suggestion{
		Type:        model.SuggestionIncomeReduction,
		Priority:    model.PriorityHigh,
		Title:       "勤務時間の削減が必要です",
		Description: fmt.Sprintf("安全ライン(90%%)を%.0f円超えています。時給の低い職場から削減しましょう。", excess),
		Actions: []model.SuggestionAction{{
			Workplace:   lowest.label(),
			Description: fmt.Sprintf("%sの勤務を月%.0f時間減らす", lowest.label(), hours),
			Hours:       hours,
			Amount:      excess,
		}},
		Impact: -excess,
	}, true
}

// timeOptimization moves a fixed block of hours from the lowest to the
// highest payer when their wage gap exceeds 20%.
func timeOptimization(ranked []workplaceStats) (model.Suggestion, bool) {
	if len(ranked) == 0 {
		return model.Suggestion{}, false
	}
	high, low := ranked[0], ranked[len(ranked)-1]
	if !(high.HourlyWage > low.HourlyWage*timeOptimizationGap) {
		return model.Suggestion{}, false
	}
	delta := (high.HourlyWage - low.HourlyWage) * timeOptimizationHours

	return model.Suggestion{
		Type:        model.SuggestionTimeOptimization,
		Priority:    model.PriorityMedium,
		Title:       "高時給の職場へシフトを移しましょう",
		Description: fmt.Sprintf("%s(時給%.0f円)と%s(時給%.0f円)の時給差を活かせます。", high.label(), high.HourlyWage, low.label(), low.HourlyWage),
		Actions: []model.SuggestionAction{
			{
				Workplace:   low.label(),
				Description: fmt.Sprintf("%sの勤務を月%.0f時間減らす(現在 計%.1f時間 / %.0f円)", low.label(), timeOptimizationHours, low.Hours, low.Earnings),
				Hours:       -timeOptimizationHours,
			},
			{
				Workplace:   high.label(),
				Description: fmt.Sprintf("%sの勤務を月%.0f時間増やす(現在 計%.1f時間 / %.0f円)", high.label(), timeOptimizationHours, high.Hours, high.Earnings),
				Hours:       timeOptimizationHours,
				Amount:      delta,
			},
		},
		Impact: delta,
	}, true
}

// workplaceBalance compares wage-adjacent workplaces and proposes moving part
// of the lower payer's monthly hours, bounded by what the remaining budget can
// absorb over the next three months at the higher wage.
func workplaceBalance(status model.Status, ranked []workplaceStats) []model.Suggestion {
	var out []model.Suggestion
	for i := 0; i+1 < len(ranked); i++ {
		higher, lower := ranked[i], ranked[i+1]
		if !(higher.HourlyWage > lower.HourlyWage*balanceGap) || higher.HourlyWage <= 0 {
			continue
		}
		monthlyHours := lower.Hours / 12
		monthlyEarnings := lower.Earnings / 12
		budgetHours := status.DependentRemaining / balanceBudgetMonth / higher.HourlyWage
		hours := math.Min(monthlyHours*balanceShare, budgetHours)
		if hours <= 0 {
			continue
		}
		increase := hours * (higher.HourlyWage - lower.HourlyWage)

		out = append(out, model.Suggestion{
			Type:     model.SuggestionWorkplaceBalance,
			Priority: model.PriorityLow,
			Title:    fmt.Sprintf("%sから%sへの配分見直し", lower.label(), higher.label()),
			Description: fmt.Sprintf("%sの月平均は%.1f時間 / %.0f円です。同じ時間を%sで働くと収入効率が上がります。",
				lower.label(), monthlyHours, monthlyEarnings, higher.label()),
			Actions: []model.SuggestionAction{
				{
					Workplace:   lower.label(),
					Description: fmt.Sprintf("%sを月%.1f時間減らす", lower.label(), hours),
					Hours:       -hours,
				},
				{
					Workplace:   higher.label(),
					Description: fmt.Sprintf("%sを月%.1f時間増やす(月+%.0f円)", higher.label(), hours, increase),
					Hours:       hours,
					Amount:      increase,
				},
			},
			Impact: increase,
		})
	}
	return out
}
