// Package engine implements the dependent-income optimization rules: risk
// status, year-end projection, reallocation suggestions, alerts and the
// composite report. Every method is a pure function of its arguments, the
// configured limits and one read of the clock.
package engine

import "FuyouSentinel/internal/model"

// Engine evaluates income against a fixed set of limits.
type Engine struct {
	limits Limits
	clock  Clock
}

// New creates an Engine. A nil clock falls back to the local wall clock.
func New(limits Limits, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{limits: limits, clock: clock}
}

// Limits returns the thresholds the engine was built with.
func (e *Engine) Limits() Limits { return e.limits }

// AnalyzeRisk bundles status, prediction, suggestions and alerts.
func (e *Engine) AnalyzeRisk(currentIncome float64, shifts []model.Shift, workplaces []model.Workplace) *model.RiskAnalysis {
	return &model.RiskAnalysis{
		Status:      e.GetCurrentStatus(currentIncome),
		Prediction:  e.PredictYearEnd(currentIncome, shifts),
		Suggestions: e.GenerateOptimizationSuggestions(currentIncome, shifts, workplaces),
		Alerts:      e.GenerateAlerts(currentIncome, shifts),
	}
}
