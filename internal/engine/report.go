package engine

import "FuyouSentinel/internal/model"

// GenerateDetailedReport assembles status, prediction, suggestions, alerts,
// the per-workplace/per-month breakdown and the action plan.
func (e *Engine) GenerateDetailedReport(currentIncome float64, shifts []model.Shift, workplaces []model.Workplace) *model.Report {
	status := e.GetCurrentStatus(currentIncome)
	prediction := e.PredictYearEnd(currentIncome, shifts)
	optimization := e.GenerateOptimizationSuggestions(currentIncome, shifts, workplaces)
	alerts := e.GenerateAlerts(currentIncome, shifts)

	return &model.Report{
		Summary: model.Summary{
			TotalIncome:       currentIncome,
			RemainingBudget:   status.DependentRemaining,
			RiskLevel:         status.RiskLevel,
			YearEndPrediction: prediction.Scenarios.Realistic,
		},
		Status:            status,
		Prediction:        prediction,
		Optimization:      optimization,
		Alerts:            alerts,
		DetailedBreakdown: buildBreakdown(shifts, workplaces),
		ActionPlan:        buildActionPlan(status, prediction),
	}
}

func buildBreakdown(shifts []model.Shift, workplaces []model.Workplace) model.Breakdown {
	names := make(map[string]string, len(workplaces))
	for _, w := range workplaces {
		names[w.ID] = w.Name
	}

	b := model.Breakdown{
		ByWorkplace: make(map[string]model.WorkplaceBreakdown),
		ByMonth:     make(map[string]model.MonthBreakdown),
	}
	for _, s := range shifts {
		wb := b.ByWorkplace[s.WorkplaceID]
		wb.Name = names[s.WorkplaceID]
		wb.ShiftCount++
		wb.TotalHours += s.Hours
		wb.TotalEarnings += s.Earnings
		b.ByWorkplace[s.WorkplaceID] = wb

		key, ok := s.MonthKey()
		if !ok {
			continue
		}
		mb := b.ByMonth[key]
		mb.Earnings += s.Earnings
		mb.Hours += s.Hours
		mb.ShiftCount++
		b.ByMonth[key] = mb
	}
	for id, wb := range b.ByWorkplace {
		wb.AverageShiftLength = wb.TotalHours / float64(wb.ShiftCount)
		b.ByWorkplace[id] = wb
	}
	return b
}

// buildActionPlan maps risk to time-horizon buckets. The immediate bucket
// says to drop the highest-paying shifts first while the income-reduction
// suggestion targets the lowest wage; both wordings are kept as is.
func buildActionPlan(status model.Status, prediction model.Prediction) model.ActionPlan {
	plan := model.ActionPlan{
		Immediate: []string{},
		ShortTerm: []string{},
	}
	if status.RiskLevel == model.RiskDanger {
		plan.Immediate = append(plan.Immediate,
			"今すぐ勤務時間を減らす",
			"時給の高いシフトから優先的に削減する",
		)
	}
	if prediction.RiskAssessment.Realistic == model.ScenarioHigh {
		plan.ShortTerm = append(plan.ShortTerm,
			"来月のシフトを月間目標額に合わせて組む",
			"複数の勤務先の時間配分を見直す",
		)
	}
	plan.LongTerm = []string{
		"年間の勤務計画を月ごとに立てる",
		"来年の扶養ラインと制度改正を確認する",
	}
	return plan
}
