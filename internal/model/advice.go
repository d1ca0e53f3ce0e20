package model

// SuggestionType identifies which optimization rule produced a suggestion.
type SuggestionType string

const (
	SuggestionIncomeReduction  SuggestionType = "income_reduction"
	SuggestionTimeOptimization SuggestionType = "time_optimization"
	SuggestionWorkplaceBalance SuggestionType = "workplace_balance"
)

// Priority ranks a suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SuggestionAction is one concrete step of a suggestion.
type SuggestionAction struct {
	Workplace   string  `json:"workplace,omitempty"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
}

// Suggestion is an actionable recommendation.
type Suggestion struct {
	Type        SuggestionType     `json:"type"`
	Priority    Priority           `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Actions     []SuggestionAction `json:"actions"`
	Impact      float64            `json:"impact"`
}

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

// Alert is a discrete notice for the user.
type Alert struct {
	Type    AlertType `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Actions []string  `json:"actions"`
}
