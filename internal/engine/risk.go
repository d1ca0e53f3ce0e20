package engine

import (
	"math"

	"FuyouSentinel/internal/calculator"
	"FuyouSentinel/internal/model"
)

// mapRiskLevel classifies a dependent progress ratio. Boundaries are inclusive.
func (e *Engine) mapRiskLevel(progress float64) model.RiskLevel {
	switch {
	case progress >= e.limits.Danger:
		return model.RiskDanger
	case progress >= e.limits.Warning:
		return model.RiskWarning
	default:
		return model.RiskSafe
	}
}

// GetCurrentStatus computes limit consumption at currentIncome.
func (e *Engine) GetCurrentStatus(currentIncome float64) model.Status {
	dependentProgress := calculator.Progress(currentIncome, e.limits.Dependent)
	return model.Status{
		DependentRemaining:       math.Max(0, e.limits.Dependent-currentIncome),
		SocialInsuranceRemaining: math.Max(0, e.limits.SocialInsurance-currentIncome),
		DependentProgress:        dependentProgress,
		SocialInsuranceProgress:  calculator.Progress(currentIncome, e.limits.SocialInsurance),
		RiskLevel:                e.mapRiskLevel(dependentProgress),
		SafetyMargin:             e.limits.Dependent*safetyLine - currentIncome,
		IsOverLimit:              dependentProgress > 1,
	}
}
