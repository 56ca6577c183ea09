package scheduling_test

import (
	"context"
	"math"
	"testing"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

func newAggregator(store *memStore) *scheduling.AttendanceAggregator {
	recon := scheduling.NewReconciliationEngine(store, store)
	return scheduling.NewAttendanceAggregator(recon, store, 8.0, 10)
}

func TestSummaryEmptyRangeHasNoDivisionByZero(t *testing.T) {
	store := newMemStore()
	aggregator := newAggregator(store)

	from, to := dayRange()
	summary, err := aggregator.Summary(context.Background(), from, to, "")
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}

	if summary.AttendanceRate != 0 || summary.AvgHoursPerShift != 0 {
		t.Fatalf("空区间的出勤率和平均工时都应该是 0, 实际 %+v", summary)
	}
}

func TestSummaryWithoutOwnerAggregatesEveryone(t *testing.T) {
	store := newMemStore()

	s1 := seedShift(t, store, "zhangwei1", at(9, 0), at(12, 0), domain.ShiftStatusPublished)
	out1 := at(12, 0)
	seedEntry(t, store, "zhangwei1", &s1.ID, at(9, 0), &out1, domain.TimeEntryStatusCompleted)

	s2 := seedShift(t, store, "lihua2", at(13, 0), at(17, 0), domain.ShiftStatusPublished)
	out2 := at(17, 0)
	seedEntry(t, store, "lihua2", &s2.ID, at(13, 0), &out2, domain.TimeEntryStatusCompleted)

	aggregator := newAggregator(store)
	from, to := dayRange()
	summary, err := aggregator.Summary(context.Background(), from, to, "")
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}

	if summary.ShiftCount != 2 {
		t.Fatalf("不指定助理时应该统计所有人的班次, 期望 2, 实际 %d", summary.ShiftCount)
	}
	if math.Abs(summary.TotalHours-7.0) > 1e-9 {
		t.Fatalf("期望两人合计工时 7 小时，实际 %f", summary.TotalHours)
	}
	if math.Abs(summary.AttendanceRate-100.0) > 1e-9 {
		t.Fatalf("两个班次都有匹配打卡，期望出勤率 100%%, 实际 %f", summary.AttendanceRate)
	}
}

func TestSummaryComputesMetrics(t *testing.T) {
	store := newMemStore()

	// 班次一：正常出勤，迟到 12 分钟，工时 8 小时
	s1 := seedShift(t, store, "zhangwei1", at(9, 0), at(17, 0), domain.ShiftStatusPublished)
	out1 := at(17, 12)
	seedEntry(t, store, "zhangwei1", &s1.ID, at(9, 12), &out1, domain.TimeEntryStatusCompleted)

	// 班次二：旷班
	seedShift(t, store, "zhangwei1", at(18, 0), at(20, 0), domain.ShiftStatusPublished)

	aggregator := newAggregator(store)
	from, to := dayRange()
	summary, err := aggregator.Summary(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}

	if summary.ShiftCount != 1 {
		t.Fatalf("期望匹配班次数 1, 实际 %d", summary.ShiftCount)
	}
	if summary.MissedCount != 1 {
		t.Fatalf("期望旷班数 1, 实际 %d", summary.MissedCount)
	}
	if summary.LateCount != 1 {
		t.Fatalf("偏差 12 分钟超过阈值 10, 期望迟到数 1, 实际 %d", summary.LateCount)
	}
	if math.Abs(summary.TotalHours-8.0) > 1e-9 {
		t.Fatalf("期望总工时 8 小时，实际 %f", summary.TotalHours)
	}
	if math.Abs(summary.AttendanceRate-50.0) > 1e-9 {
		t.Fatalf("两个已发布班次匹配一个，期望出勤率 50%%, 实际 %f", summary.AttendanceRate)
	}
	if math.Abs(summary.AvgHoursPerShift-8.0) > 1e-9 {
		t.Fatalf("期望平均每班工时 8, 实际 %f", summary.AvgHoursPerShift)
	}
}

func TestSummaryOvertime(t *testing.T) {
	store := newMemStore()

	// 10 小时的打卡，标准班次 8 小时，加班 2 小时
	s1 := seedShift(t, store, "zhangwei1", at(8, 0), at(18, 0), domain.ShiftStatusPublished)
	out := at(18, 0)
	seedEntry(t, store, "zhangwei1", &s1.ID, at(8, 0), &out, domain.TimeEntryStatusCompleted)

	aggregator := newAggregator(store)
	from, to := dayRange()
	summary, err := aggregator.Summary(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}

	if math.Abs(summary.OvertimeHours-2.0) > 1e-9 {
		t.Fatalf("期望加班 2 小时，实际 %f", summary.OvertimeHours)
	}
}

func TestSummaryCountsAutoClosedAndEditedHours(t *testing.T) {
	store := newMemStore()

	out1 := at(12, 0)
	seedEntry(t, store, "zhangwei1", nil, at(9, 0), &out1, domain.TimeEntryStatusAutoClosed)
	out2 := at(16, 0)
	seedEntry(t, store, "zhangwei1", nil, at(14, 0), &out2, domain.TimeEntryStatusEdited)
	// 进行中的记录没有闭合，不计入总工时
	seedEntry(t, store, "zhangwei1", nil, at(20, 0), nil, domain.TimeEntryStatusActive)

	aggregator := newAggregator(store)
	from, to := dayRange()
	summary, err := aggregator.Summary(context.Background(), from, to, "zhangwei1")
	if err != nil {
		t.Fatalf("汇总失败: %v", err)
	}

	if math.Abs(summary.TotalHours-5.0) > 1e-9 {
		t.Fatalf("auto_closed 和 edited 的工时都应该计入，期望 5 小时，实际 %f", summary.TotalHours)
	}
}
