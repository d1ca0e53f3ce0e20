package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"FuyouSentinel/internal/collector"
	"FuyouSentinel/internal/engine"
	"FuyouSentinel/internal/ledger"
	"FuyouSentinel/internal/metrics"
	"FuyouSentinel/internal/model"
	"FuyouSentinel/internal/notifier"
	"FuyouSentinel/internal/recorder"
)

// Deps are the components a Scheduler drives. Notifier and Metrics may be nil.
type Deps struct {
	Collector *collector.Collector
	Engine    *engine.Engine
	Clock     engine.Clock
	Ledger    *ledger.Manager
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Collector
	Log       *logrus.Logger
}

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron *cron.Cron
	Deps
	Ctx context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps) *Scheduler {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Clock == nil {
		deps.Clock = engine.SystemClock{}
	}
	loc := deps.Clock.Now().Location()
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Deps: deps,
		Ctx:  ctx,
	}
}

// RegisterAll registers the daily check, monthly report and yearly reset.
func (s *Scheduler) RegisterAll(dailyCron, monthlyCron, yearlyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyCheck); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(monthlyCron, s.monthlyTask); err != nil {
		return fmt.Errorf("register monthly task: %w", err)
	}
	if _, err := s.Cron.AddFunc(yearlyCron, s.yearlyReset); err != nil {
		return fmt.Errorf("register yearly reset: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunDailyNow executes the daily check immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyCheck()
}

// buildReport collects the current year and runs the engine over it.
func (s *Scheduler) buildReport(trigger string) (string, *model.Report, error) {
	now := s.Clock.Now()
	snap, err := s.Collector.Collect(now)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.CollectionFailed()
		}
		return "", nil, err
	}

	id := uuid.NewString()
	rep := s.Engine.GenerateDetailedReport(snap.CurrentIncome, snap.Shifts, snap.Workplaces)
	if s.Metrics != nil {
		s.Metrics.ObserveReport(rep)
	}
	if err := s.Recorder.RecordReport(&recorder.ReportSnapshot{
		ReportID:    id,
		Trigger:     trigger,
		GeneratedAt: now,
		Report:      rep,
	}); err != nil {
		s.Log.WithError(err).Error("record report")
	}
	return id, rep, nil
}

func (s *Scheduler) dailyCheck() {
	s.Log.Info("running daily check")
	now := s.Clock.Now()
	id, rep, err := s.buildReport("DAILY")
	if err != nil {
		s.Log.WithError(err).Error("daily collect")
		s.trySend(fmt.Sprintf("❌ シフトデータの取得に失敗しました: %v", err), notifier.Loud)
		return
	}
	if s.Metrics != nil {
		s.Metrics.SetStanding(rep)
	}

	obs := s.Ledger.Observe(rep, now)
	s.Log.WithFields(logrus.Fields{
		"report_id":  id,
		"income":     rep.Summary.TotalIncome,
		"risk":       rep.Summary.RiskLevel,
		"new_alerts": len(obs.NewAlerts),
		"escalated":  obs.Escalated,
	}).Info("daily check complete")

	var parts []string
	if obs.Escalated {
		parts = append(parts, notifier.FormatEscalation(obs.Previous, obs.Current, rep.Summary.TotalIncome))
	}
	if msg := notifier.FormatAlerts(obs.NewAlerts); msg != "" {
		parts = append(parts, msg)
	}
	sent := false
	if len(parts) > 0 {
		sent = s.trySend(strings.Join(parts, "\n"), notifier.Loud)
		if sent {
			s.Ledger.MarkNotified(obs, now)
		}
	}

	fresh := make(map[string]bool, len(obs.NewAlerts))
	for _, a := range obs.NewAlerts {
		fresh[a.Title] = true
	}
	events := make([]recorder.AlertEvent, 0, len(rep.Alerts))
	for _, a := range rep.Alerts {
		events = append(events, recorder.AlertEvent{ReportID: id, Alert: a, Notified: sent && fresh[a.Title]})
	}
	if err := s.Recorder.RecordAlerts(events); err != nil {
		s.Log.WithError(err).Error("record alerts")
	}
}

func (s *Scheduler) monthlyTask() {
	s.Log.Info("running monthly report")
	_, rep, err := s.buildReport("MONTHLY")
	if err != nil {
		s.Log.WithError(err).Error("monthly collect")
		s.trySend(fmt.Sprintf("❌ 月次レポートの作成に失敗しました: %v", err), notifier.Loud)
		return
	}
	now := s.Clock.Now()
	msg := notifier.FormatMonthlySummary(rep, s.Ledger.GetState(), now) + "\n" + notifier.FormatReport(rep, now)
	s.trySend(msg, notifier.Quiet)
}

func (s *Scheduler) yearlyReset() {
	year := s.Clock.Now().Year()
	s.Log.WithField("year", year).Info("running yearly reset")
	s.Ledger.ResetYear(year)
	s.trySend(fmt.Sprintf("🎍 %d年の扶養トラッキングを開始しました。今年の収入は¥0からカウントされます。", year), notifier.Quiet)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd, _, _ := strings.Cut(fields[0], "@")

	switch cmd {
	case "/check", "チェック":
		s.dailyCheck()
		return ""
	case "/history", "履歴":
		return s.formatHistory()
	case "/status", "ステータス", "/report", "レポート", "/alerts", "アラート", "/plan", "プラン", "/suggest", "提案":
	default:
		return helpText
	}

	_, rep, err := s.buildReport("COMMAND")
	if err != nil {
		s.Log.WithError(err).Error("command collect")
		return fmt.Sprintf("❌ シフトデータの取得に失敗しました: %v", err)
	}

	switch cmd {
	case "/status", "ステータス":
		return notifier.FormatStatus(rep.Summary.TotalIncome, rep.Status)
	case "/report", "レポート":
		return notifier.FormatReport(rep, s.Clock.Now())
	case "/alerts", "アラート":
		if len(rep.Alerts) == 0 {
			return "✅ 現在アラートはありません"
		}
		return notifier.FormatAlerts(rep.Alerts)
	case "/plan", "プラン":
		return notifier.FormatActionPlan(rep.ActionPlan)
	default:
		return notifier.FormatSuggestions(rep.Optimization)
	}
}

const helpText = "利用できるコマンド:\n" +
	"• /status (ステータス)\n" +
	"• /report (レポート)\n" +
	"• /alerts (アラート)\n" +
	"• /plan (プラン)\n" +
	"• /suggest (提案)\n" +
	"• /history (履歴)\n" +
	"• /check (チェック)"

func (s *Scheduler) formatHistory() string {
	points, err := s.Recorder.History(10)
	if err != nil {
		s.Log.WithError(err).Error("load history")
		return fmt.Sprintf("❌ 履歴の取得に失敗しました: %v", err)
	}
	if len(points) == 0 {
		return "履歴はまだありません"
	}
	var b strings.Builder
	b.WriteString("🕘 <b>最近のチェック</b>\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("%s  %s  %.1f%%  %s\n",
			p.GeneratedAt.In(s.Clock.Now().Location()).Format("01-02 15:04"),
			notifier.Yen(p.CurrentIncome), p.DependentProgress*100, p.RiskLevel))
	}
	return b.String()
}

// trySend reports whether the message was delivered. Retries are the
// notifier's concern.
func (s *Scheduler) trySend(text string, urgency notifier.Urgency) bool {
	if s.Notifier == nil {
		s.Log.WithField("chars", len(text)).Debug("notifications disabled, message dropped")
		return false
	}
	if err := s.Notifier.Notify(s.Ctx, notifier.Message{Text: text, Urgency: urgency}); err != nil {
		s.Log.WithError(err).Error("send notification")
		return false
	}
	return true
}
