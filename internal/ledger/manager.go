package ledger

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"FuyouSentinel/internal/model"
)

const recentIncomeSamples = 12

// Observation is what changed since the previous check.
type Observation struct {
	NewAlerts []model.Alert
	Previous  model.RiskLevel
	Current   model.RiskLevel
	Escalated bool
}

// Manager tracks per-year check history with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.LedgerState
	filePath string
	log      *logrus.Logger
}

// NewManager creates a Manager, loading state from disk. State from an
// earlier year is discarded.
func NewManager(filePath string, year int, log *logrus.Logger) (*Manager, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	m := &Manager{state: state, filePath: filePath, log: log}
	if state.Year != year {
		m.resetLocked(year)
	}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetState returns a copy of the current ledger state.
func (m *Manager) GetState() model.LedgerState {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *m.state
	cp.NotifiedAlerts = make(map[string]string, len(m.state.NotifiedAlerts))
	for k, v := range m.state.NotifiedAlerts {
		cp.NotifiedAlerts[k] = v
	}
	cp.RecentIncomes = append([]float64(nil), m.state.RecentIncomes...)
	return cp
}

// Observe records a check and reports what still has to reach the user:
// alerts not yet delivered this calendar month (or delivered with another
// severity) and a risk tier above the last delivered one. Nothing is marked
// as delivered here; call MarkNotified once the message went out.
func (m *Manager) Observe(report *model.Report, now time.Time) Observation {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollLocked(now)

	current := report.Summary.RiskLevel
	if riskRank(current) < riskRank(m.state.NotifiedRiskLevel) {
		m.state.NotifiedRiskLevel = current
	}
	obs := Observation{
		Previous: m.state.NotifiedRiskLevel,
		Current:  current,
	}
	obs.Escalated = riskRank(obs.Current) > riskRank(obs.Previous)

	for _, a := range report.Alerts {
		if m.state.NotifiedAlerts[a.Title] != string(a.Type) {
			obs.NewAlerts = append(obs.NewAlerts, a)
		}
	}

	if current == model.RiskDanger {
		m.state.DangerStreakDays++
	} else {
		m.state.DangerStreakDays = 0
	}

	m.state.LastIncome = report.Summary.TotalIncome
	m.state.LastRiskLevel = current
	m.state.LastCheckAt = now
	m.state.RecentIncomes = append(m.state.RecentIncomes, report.Summary.TotalIncome)
	if len(m.state.RecentIncomes) > recentIncomeSamples {
		m.state.RecentIncomes = m.state.RecentIncomes[len(m.state.RecentIncomes)-recentIncomeSamples:]
	}

	if err := m.save(); err != nil {
		m.log.WithError(err).Error("failed to save ledger state")
	}
	return obs
}

// MarkNotified records that obs was delivered to the user.
func (m *Manager) MarkNotified(obs Observation, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollLocked(now)
	for _, a := range obs.NewAlerts {
		m.state.NotifiedAlerts[a.Title] = string(a.Type)
	}
	m.state.NotifiedRiskLevel = obs.Current

	if err := m.save(); err != nil {
		m.log.WithError(err).Error("failed to save ledger state")
	}
}

// rollLocked starts a new year or a new alert month when now has moved on.
func (m *Manager) rollLocked(now time.Time) {
	if now.Year() != m.state.Year {
		m.resetLocked(now.Year())
	}
	monthKey := now.Format(model.MonthLayout)
	if m.state.NotifiedMonth != monthKey || m.state.NotifiedAlerts == nil {
		m.state.NotifiedMonth = monthKey
		m.state.NotifiedAlerts = make(map[string]string)
	}
}

// ResetYear clears all tracking for a new tax year.
func (m *Manager) ResetYear(year int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked(year)
	if err := m.save(); err != nil {
		m.log.WithError(err).Error("failed to save ledger state after yearly reset")
	}
}

func (m *Manager) resetLocked(year int) {
	m.log.WithFields(logrus.Fields{"from": m.state.Year, "to": year}).Info("ledger reset for new year")
	*m.state = model.LedgerState{
		Year:              year,
		LastRiskLevel:     model.RiskSafe,
		NotifiedRiskLevel: model.RiskSafe,
		NotifiedAlerts:    make(map[string]string),
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}

func riskRank(level model.RiskLevel) int {
	switch level {
	case model.RiskDanger:
		return 2
	case model.RiskWarning:
		return 1
	default:
		return 0
	}
}
