package scheduling_test

import (
	"context"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

func seedEntry(t *testing.T, store *memStore, owner string, shiftID *int64, clockIn time.Time, clockOut *time.Time, status domain.TimeEntryStatus) *domain.TimeEntry {
	t.Helper()

	entry := &domain.TimeEntry{
		Owner:    owner,
		ClockIn:  clockIn,
		ClockOut: clockOut,
		ShiftID:  shiftID,
		Status:   status,
	}
	if err := store.CreateTimeEntry(context.Background(), entry); err != nil {
		t.Fatalf("创建打卡记录失败: %v", err)
	}
	return entry
}

func dayRange() (time.Time, time.Time) {
	return at(0, 0), at(23, 59)
}

func TestPlanVsActualDeviationBanding(t *testing.T) {
	store := newMemStore()
	shift := seedShift(t, store, "zhangwei1", at(9, 0), at(17, 0), domain.ShiftStatusPublished)

	// 09:12 上班，偏差 12 分钟，落在 10 < x <= 30 的 warn 区间
	out := at(17, 5)
	seedEntry(t, store, "zhangwei1", &shift.ID, at(9, 12), &out, domain.TimeEntryStatusCompleted)

	engine := scheduling.NewReconciliationEngine(store, store)
	from, to := dayRange()
	items, err := engine.PlanVsActual(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("期望 1 条对账结果，实际 %d", len(items))
	}

	item := items[0]
	if item.StartDeviationMinutes == nil || *item.StartDeviationMinutes != 12 {
		t.Fatalf("期望上班偏差 12 分钟，实际 %+v", item.StartDeviationMinutes)
	}
	if item.StartSeverity != domain.SeverityWarn {
		t.Fatalf("期望上班严重程度 warn, 实际 %s", item.StartSeverity)
	}
	if item.EndDeviationMinutes == nil || *item.EndDeviationMinutes != 5 {
		t.Fatalf("期望下班偏差 5 分钟，实际 %+v", item.EndDeviationMinutes)
	}
	if item.EndSeverity != domain.SeverityGood {
		t.Fatalf("期望下班严重程度 good, 实际 %s", item.EndSeverity)
	}
}

func TestPlanVsActualNoShow(t *testing.T) {
	store := newMemStore()
	seedShift(t, store, "zhangwei1", at(9, 0), at(17, 0), domain.ShiftStatusPublished)

	engine := scheduling.NewReconciliationEngine(store, store)
	from, to := dayRange()
	items, err := engine.PlanVsActual(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}

	item := items[0]
	if !item.NoShow {
		t.Fatal("没有匹配打卡记录的已发布班次应该判定为旷班")
	}
	if item.StartDeviationMinutes != nil {
		t.Fatalf("旷班时偏差应该为 nil, 实际 %d", *item.StartDeviationMinutes)
	}
	if item.StartSeverity != domain.SeveritySevere || item.EndSeverity != domain.SeveritySevere {
		t.Fatalf("旷班的严重程度应该是 severe, 实际 %s / %s", item.StartSeverity, item.EndSeverity)
	}
}

func TestPlanVsActualNotYetClosed(t *testing.T) {
	store := newMemStore()
	shift := seedShift(t, store, "zhangwei1", at(9, 0), at(17, 0), domain.ShiftStatusPublished)
	seedEntry(t, store, "zhangwei1", &shift.ID, at(9, 0), nil, domain.TimeEntryStatusActive)

	engine := scheduling.NewReconciliationEngine(store, store)
	from, to := dayRange()
	items, err := engine.PlanVsActual(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}

	item := items[0]
	if item.NoShow {
		t.Fatal("存在上班打卡时不应该判定为旷班")
	}
	if item.StartDeviationMinutes == nil || *item.StartDeviationMinutes != 0 {
		t.Fatalf("期望上班偏差 0 分钟，实际 %+v", item.StartDeviationMinutes)
	}
	if item.EndDeviationMinutes != nil {
		t.Fatalf("未闭合的打卡记录其下班偏差应该为 nil, 实际 %d", *item.EndDeviationMinutes)
	}
}

func TestPlanVsActualPicksEarliestClockIn(t *testing.T) {
	store := newMemStore()
	shift := seedShift(t, store, "zhangwei1", at(9, 0), at(17, 0), domain.ShiftStatusPublished)

	lateOut := at(17, 30)
	seedEntry(t, store, "zhangwei1", &shift.ID, at(9, 25), &lateOut, domain.TimeEntryStatusCompleted)
	earlyOut := at(17, 0)
	seedEntry(t, store, "zhangwei1", &shift.ID, at(8, 55), &earlyOut, domain.TimeEntryStatusCompleted)

	engine := scheduling.NewReconciliationEngine(store, store)
	from, to := dayRange()
	items, err := engine.PlanVsActual(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}

	// 多条记录引用同一班次时取 ClockIn 最早的那一条
	item := items[0]
	if item.StartDeviationMinutes == nil || *item.StartDeviationMinutes != -5 {
		t.Fatalf("期望取 08:55 的记录（偏差 -5），实际 %+v", item.StartDeviationMinutes)
	}
}

func TestPlanVsActualEndToEnd(t *testing.T) {
	store := newMemStore()
	shift := seedShift(t, store, "zhangwei1", at(9, 0), at(17, 0), domain.ShiftStatusPublished)
	out := at(17, 10)
	seedEntry(t, store, "zhangwei1", &shift.ID, at(9, 5), &out, domain.TimeEntryStatusCompleted)

	engine := scheduling.NewReconciliationEngine(store, store)
	from, to := dayRange()
	items, err := engine.PlanVsActual(context.Background(), from, to, "")
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}

	item := items[0]
	if *item.StartDeviationMinutes != 5 || *item.EndDeviationMinutes != 10 {
		t.Fatalf("期望偏差 5/10, 实际 %d/%d", *item.StartDeviationMinutes, *item.EndDeviationMinutes)
	}
	if item.StartSeverity != domain.SeverityGood || item.EndSeverity != domain.SeverityGood {
		t.Fatalf("期望两个严重程度都是 good, 实际 %s / %s", item.StartSeverity, item.EndSeverity)
	}

	hours, ok := item.Actual.HoursWorked()
	if !ok {
		t.Fatal("闭合的打卡记录应该有工时")
	}
	if hours < 8.08 || hours > 8.09 {
		t.Fatalf("期望工时约 8.083 小时，实际 %f", hours)
	}
}

func TestClassifyDeviation(t *testing.T) {
	cases := []struct {
		name    string
		minutes *int
		want    domain.DeviationSeverity
	}{
		{"无打卡", nil, domain.SeveritySevere},
		{"准时", intPtr(0), domain.SeverityGood},
		{"提前 10 分钟", intPtr(-10), domain.SeverityGood},
		{"迟到 11 分钟", intPtr(11), domain.SeverityWarn},
		{"提前 30 分钟", intPtr(-30), domain.SeverityWarn},
		{"迟到 31 分钟", intPtr(31), domain.SeveritySevere},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scheduling.ClassifyDeviation(tc.minutes); got != tc.want {
				t.Fatalf("期望 %s, 实际 %s", tc.want, got)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}
