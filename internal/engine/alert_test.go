package engine

import (
	"fmt"
	"testing"

	"FuyouSentinel/internal/model"
)

func findAlert(alerts []model.Alert, title string) (model.Alert, bool) {
	for _, a := range alerts {
		if a.Title == title {
			return a, true
		}
	}
	return model.Alert{}, false
}

func marchShifts(days []int, earnings float64) []model.Shift {
	shifts := make([]model.Shift, len(days))
	for i, d := range days {
		shifts[i] = model.Shift{Date: fmt.Sprintf("2025-03-%02d", d), WorkplaceID: "a", Earnings: earnings, Hours: 5}
	}
	return shifts
}

func TestAlerts_SafeIncomeHasNone(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	alerts := e.GenerateAlerts(300000, nil)
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %+v", alerts)
	}
}

func TestAlerts_DangerBoundaryIsCritical(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	// 978500 / 1030000 == 0.95
	alerts := e.GenerateAlerts(978500, nil)
	if len(alerts) == 0 || alerts[0].Type != model.AlertCritical {
		t.Fatalf("expected critical alert first, got %+v", alerts)
	}
}

func TestAlerts_WarningLevel(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	alerts := e.GenerateAlerts(950000, nil)
	if len(alerts) != 1 || alerts[0].Type != model.AlertWarning {
		t.Errorf("expected a single warning alert, got %+v", alerts)
	}
}

func TestAlerts_SocialInsuranceIsIndependent(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	// 1200000 > 1300000 * 0.9
	alerts := e.GenerateAlerts(1200000, nil)
	if len(alerts) != 2 {
		t.Fatalf("expected critical + info, got %+v", alerts)
	}
	if alerts[0].Type != model.AlertCritical || alerts[1].Type != model.AlertInfo {
		t.Errorf("unexpected order: %s, %s", alerts[0].Type, alerts[1].Type)
	}
}

func TestAlerts_MonthlySpike(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	// threshold is 1030000 / 12 * 1.5 = 128750
	shifts := marchShifts([]int{3, 10, 17}, 43000)
	alerts := e.GenerateAlerts(300000, shifts)
	a, ok := findAlert(alerts, "今月の収入が多め")
	if !ok {
		t.Fatalf("expected monthly spike alert, got %+v", alerts)
	}
	if a.Type != model.AlertWarning {
		t.Errorf("expected warning, got %s", a.Type)
	}

	quiet := marchShifts([]int{3, 10, 17}, 42000)
	if _, ok := findAlert(e.GenerateAlerts(300000, quiet), "今月の収入が多め"); ok {
		t.Error("126000 should not trigger the spike alert")
	}
}

func TestAlerts_MonthlySpikeOnlyCountsCurrentMonth(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 4, 2))
	shifts := marchShifts([]int{3, 10, 17}, 60000)
	if _, ok := findAlert(e.GenerateAlerts(300000, shifts), "今月の収入が多め"); ok {
		t.Error("March shifts must not count toward April")
	}
}

func TestAlerts_ConsecutiveWorkdays(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))

	streak := marchShifts([]int{1, 2, 3, 4, 5, 6, 7, 8}, 8000)
	a, ok := findAlert(e.GenerateAlerts(300000, streak), "連続勤務")
	if !ok {
		t.Fatal("expected consecutive workday alert for 8 days")
	}
	if a.Type != model.AlertInfo {
		t.Errorf("expected info, got %s", a.Type)
	}

	alternating := marchShifts([]int{1, 3, 5, 7, 9, 11, 13, 15}, 8000)
	if _, ok := findAlert(e.GenerateAlerts(300000, alternating), "連続勤務"); ok {
		t.Error("alternating days must not trigger the alert")
	}

	six := marchShifts([]int{1, 2, 3, 4, 5, 6}, 8000)
	if _, ok := findAlert(e.GenerateAlerts(300000, six), "連続勤務"); ok {
		t.Error("a 6-day run must not trigger the alert")
	}
}

func TestAlerts_DuplicateDateBreaksStreak(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	// seven distinct consecutive days, but the repeated 3rd splits the run into 3 + 5
	shifts := marchShifts([]int{1, 2, 3, 3, 4, 5, 6, 7}, 8000)
	if _, ok := findAlert(e.GenerateAlerts(300000, shifts), "連続勤務"); ok {
		t.Error("duplicate dates are not deduplicated and should reset the run")
	}
}

func TestAlerts_Order(t *testing.T) {
	e := New(DefaultLimits(), clockAt(2025, 3, 20))
	shifts := marchShifts([]int{1, 2, 3, 4, 5, 6, 7, 8}, 20000)
	alerts := e.GenerateAlerts(1200000, shifts)
	want := []model.AlertType{model.AlertCritical, model.AlertInfo, model.AlertWarning, model.AlertInfo}
	if len(alerts) != len(want) {
		t.Fatalf("expected %d alerts, got %d: %+v", len(want), len(alerts), alerts)
	}
	for i, typ := range want {
		if alerts[i].Type != typ {
			t.Errorf("alert %d: expected %s, got %s", i, typ, alerts[i].Type)
		}
	}
	if alerts[3].Title != "連続勤務" {
		t.Errorf("expected streak alert last, got %s", alerts[3].Title)
	}
}
