package collector

import (
	"time"

	"FuyouSentinel/internal/model"
)

// Source defines the interface for fetching shift history and the workplace registry.
type Source interface {
	// FetchShifts returns shifts dated in [from, to] inclusive.
	FetchShifts(from, to time.Time) ([]model.Shift, error)
	FetchWorkplaces() ([]model.Workplace, error)
	Name() string
}
