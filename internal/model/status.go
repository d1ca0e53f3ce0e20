package model

// RiskLevel is the dependency-limit tier of the current income.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskWarning RiskLevel = "warning"
	RiskDanger  RiskLevel = "danger"
)

// ScenarioRisk classifies a projected year-end total.
type ScenarioRisk string

const (
	ScenarioLow      ScenarioRisk = "low"
	ScenarioMedium   ScenarioRisk = "medium"
	ScenarioHigh     ScenarioRisk = "high"
	ScenarioCritical ScenarioRisk = "critical"
)

// Status is the limit consumption at the current income.
type Status struct {
	DependentRemaining       float64   `json:"dependentRemaining"`
	SocialInsuranceRemaining float64   `json:"socialInsuranceRemaining"`
	DependentProgress        float64   `json:"dependentProgress"`
	SocialInsuranceProgress  float64   `json:"socialInsuranceProgress"`
	RiskLevel                RiskLevel `json:"riskLevel"`
	SafetyMargin             float64   `json:"safetyMargin"` // negative once past the 90% line
	IsOverLimit              bool      `json:"isOverLimit"`
}

// Scenarios holds the projected year-end totals.
type Scenarios struct {
	Conservative float64 `json:"conservative"`
	Realistic    float64 `json:"realistic"`
	Optimistic   float64 `json:"optimistic"`
}

// RiskAssessment classifies each scenario against the dependent limit.
type RiskAssessment struct {
	Conservative ScenarioRisk `json:"conservative"`
	Realistic    ScenarioRisk `json:"realistic"`
	Optimistic   ScenarioRisk `json:"optimistic"`
}

// MonthlyAverages summarises the trailing monthly earnings buckets.
type MonthlyAverages struct {
	Recent  float64 `json:"recent"`
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

// Prediction is the year-end income forecast.
type Prediction struct {
	Scenarios       Scenarios       `json:"scenarios"`
	RiskAssessment  RiskAssessment  `json:"riskAssessment"`
	MonthlyTarget   float64         `json:"monthlyTarget"`
	MonthlyAverages MonthlyAverages `json:"monthlyAverages"`
	TrendMultiplier float64         `json:"trendMultiplier"`
	RemainingMonths int             `json:"remainingMonths"`
}
