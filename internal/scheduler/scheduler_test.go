package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuyouSentinel/internal/collector"
	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/ledger"
	"FuyouSentinel/internal/metrics"
	"FuyouSentinel/internal/model"
	"FuyouSentinel/internal/notifier"
	"FuyouSentinel/internal/recorder"
)

type captureNotifier struct {
	mu       sync.Mutex
	msgs     []string
	urgency  []notifier.Urgency
	failNext int
}

func (c *captureNotifier) Notify(_ context.Context, msg notifier.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext > 0 {
		c.failNext--
		return errors.New("telegram unreachable")
	}
	c.msgs = append(c.msgs, msg.Text)
	c.urgency = append(c.urgency, msg.Urgency)
	return nil
}

func (c *captureNotifier) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

// monthlyShifts is one 100,000 yen shift per month, January through October.
func monthlyShifts() []model.Shift {
	var out []model.Shift
	for m := 1; m <= 10; m++ {
		out = append(out, model.Shift{
			Date:        fmt.Sprintf("2025-%02d-10", m),
			WorkplaceID: "cafe",
			Earnings:    100000,
			Hours:       100,
		})
	}
	return out
}

func newTestScheduler(t *testing.T, src collector.Source, n *captureNotifier) *Scheduler {
	t.Helper()
	clock := engine.FixedClock(time.Date(2025, 10, 15, 21, 0, 0, 0, time.UTC))
	lm, err := ledger.NewManager(filepath.Join(t.TempDir(), "ledger.json"), 2025, nil)
	require.NoError(t, err)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	deps := Deps{
		Collector: collector.NewCollector(src, nil),
		Engine:    engine.New(engine.DefaultLimits(), clock),
		Clock:     clock,
		Ledger:    lm,
		Recorder:  rec,
		Metrics:   metrics.NewCollector(),
	}
	if n != nil {
		deps.Notifier = n
	}
	return NewScheduler(context.Background(), deps)
}

func mockSource() *collector.MockSource {
	return &collector.MockSource{
		Shifts:     monthlyShifts(),
		Workplaces: []model.Workplace{{ID: "cafe", Name: "カフェ", HourlyWage: 1000}},
	}
}

func TestDailyCheck_NotifiesNewAlertsOnce(t *testing.T) {
	n := &captureNotifier{}
	s := newTestScheduler(t, mockSource(), n)

	s.RunDailyNow()
	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "リスク上昇")
	assert.Contains(t, msgs[0], "扶養限度額に到達間近")

	assert.Equal(t, []notifier.Urgency{notifier.Loud}, n.urgency)

	s.RunDailyNow()
	assert.Len(t, n.messages(), 1, "same alert is not repeated within the month")

	st := s.Ledger.GetState()
	assert.Equal(t, model.RiskDanger, st.LastRiskLevel)
	assert.Equal(t, 1000000.0, st.LastIncome)
	assert.Equal(t, 2, st.DangerStreakDays)

	history, err := s.Recorder.History(10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestDailyCheck_FailedSendIsRetriedNextCheck(t *testing.T) {
	n := &captureNotifier{failNext: 1}
	s := newTestScheduler(t, mockSource(), n)

	s.RunDailyNow()
	assert.Empty(t, n.messages())
	st := s.Ledger.GetState()
	assert.Equal(t, model.RiskDanger, st.LastRiskLevel)
	assert.Equal(t, model.RiskSafe, st.NotifiedRiskLevel)
	assert.Empty(t, st.NotifiedAlerts)

	s.RunDailyNow()
	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "リスク上昇")
	assert.Contains(t, msgs[0], "扶養限度額に到達間近")
	assert.Equal(t, model.RiskDanger, s.Ledger.GetState().NotifiedRiskLevel)

	s.RunDailyNow()
	assert.Len(t, n.messages(), 1)
}

func TestDailyCheck_CollectionFailure(t *testing.T) {
	n := &captureNotifier{}
	s := newTestScheduler(t, &collector.MockSource{Err: errors.New("backend down")}, n)

	s.RunDailyNow()
	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "backend down")
	assert.Equal(t, model.RiskSafe, s.Ledger.GetState().LastRiskLevel)
}

func TestDailyCheck_NotificationsDisabled(t *testing.T) {
	s := newTestScheduler(t, mockSource(), nil)
	assert.NotPanics(t, s.RunDailyNow)
	assert.Equal(t, model.RiskDanger, s.Ledger.GetState().LastRiskLevel)
}

func TestHandleCommand(t *testing.T) {
	s := newTestScheduler(t, mockSource(), &captureNotifier{})

	tests := []struct {
		command string
		want    string
	}{
		{"/status", "¥1,000,000"},
		{"/status@fuyou_bot", "🔴 危険"},
		{"ステータス", "扶養ステータス"},
		{"/report", "年末予測"},
		{"/alerts", "扶養限度額に到達間近"},
		{"/plan", "時給の高いシフトから優先的に削減する"},
		{"/suggest", "最適化の提案"},
		{"/history", "最近のチェック"},
		{"hello", "利用できるコマンド"},
		{"", "利用できるコマンド"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Contains(t, s.HandleCommand(tt.command), tt.want)
		})
	}
}

func TestHandleCommand_HistoryAfterCheck(t *testing.T) {
	s := newTestScheduler(t, mockSource(), &captureNotifier{})
	assert.Equal(t, "", s.HandleCommand("/check"))
	out := s.HandleCommand("/history")
	assert.Contains(t, out, "¥1,000,000")
	assert.Contains(t, out, "danger")
}

func TestYearlyReset(t *testing.T) {
	n := &captureNotifier{}
	s := newTestScheduler(t, mockSource(), n)
	s.RunDailyNow()
	s.yearlyReset()

	st := s.Ledger.GetState()
	assert.Equal(t, 2025, st.Year)
	assert.Equal(t, model.RiskSafe, st.LastRiskLevel)
	msgs := n.messages()
	assert.Contains(t, msgs[len(msgs)-1], "2025年")
}

func TestMonthlyTask(t *testing.T) {
	n := &captureNotifier{}
	s := newTestScheduler(t, mockSource(), n)
	s.monthlyTask()
	msgs := n.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "月次サマリー")
	assert.Contains(t, msgs[0], "扶養レポート")
	assert.Equal(t, []notifier.Urgency{notifier.Quiet}, n.urgency)
}

func TestRegisterAll_InvalidCron(t *testing.T) {
	s := newTestScheduler(t, mockSource(), nil)
	require.NoError(t, s.RegisterAll("0 0 21 * * *", "0 0 9 1 * *", "0 0 0 1 1 *"))
	assert.Error(t, s.RegisterAll("bogus", "0 0 9 1 * *", "0 0 0 1 1 *"))
}
