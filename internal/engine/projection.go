package engine

import (
	"math"

	"FuyouSentinel/internal/calculator"
	"FuyouSentinel/internal/model"
)

// trailingMonths is how far back the projector looks, in calendar months.
const trailingMonths = calculator.TrailingWindow

// trendMultiplier is a three-way heuristic on the latest month vs the mean.
func trendMultiplier(avg model.MonthlyAverages) float64 {
	switch {
	case avg.Recent > avg.Average*1.2:
		return 1.1
	case avg.Recent < avg.Average*0.8:
		return 0.9
	default:
		return 1.0
	}
}

// classifyScenario maps a projected total to its risk against Dependent.
func (e *Engine) classifyScenario(total float64) model.ScenarioRisk {
	ratio := calculator.Progress(total, e.limits.Dependent)
	switch {
	case ratio >= 1.0:
		return model.ScenarioCritical
	case ratio >= 0.95:
		return model.ScenarioHigh
	case ratio >= 0.9:
		return model.ScenarioMedium
	default:
		return model.ScenarioLow
	}
}

// monthlyAverages summarises the trailing window. Recent is the
// chronologically latest bucket.
func monthlyAverages(months []calculator.MonthTotal) model.MonthlyAverages {
	if len(months) == 0 {
		return model.MonthlyAverages{}
	}
	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = m.Earnings
	}
	high, low, _ := calculator.MonthlyRange(months)
	return model.MonthlyAverages{
		Recent:  values[len(values)-1],
		Average: calculator.Mean(values),
		Highest: high,
		Lowest:  low,
	}
}

// PredictYearEnd projects year-end income from the last three months of shifts.
func (e *Engine) PredictYearEnd(currentIncome float64, shifts []model.Shift) model.Prediction {
	now := e.clock.Now()

	avg := monthlyAverages(calculator.TrailingMonthlyTotals(shifts, now, trailingMonths))
	trend := trendMultiplier(avg)
	remaining := 12 - int(now.Month())
	rm := float64(remaining)

	scenarios := model.Scenarios{
		Conservative: currentIncome + avg.Recent*0.8*rm,
		Realistic:    currentIncome + avg.Recent*trend*rm,
		Optimistic:   currentIncome + avg.Highest*1.2*rm,
	}

	var target float64
	if remaining > 0 {
		target = math.Floor(math.Max(0, e.limits.Dependent*safetyLine-currentIncome) / rm)
	}

	return model.Prediction{
		Scenarios: scenarios,
		RiskAssessment: model.RiskAssessment{
			Conservative: e.classifyScenario(scenarios.Conservative),
			Realistic:    e.classifyScenario(scenarios.Realistic),
			Optimistic:   e.classifyScenario(scenarios.Optimistic),
		},
		MonthlyTarget:   target,
		MonthlyAverages: avg,
		TrendMultiplier: trend,
		RemainingMonths: remaining,
	}
}
