package scheduling

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// AttendanceAggregator 在对账结果之上计算区间级别的考勤汇总指标
type AttendanceAggregator struct {
	recon   *ReconciliationEngine
	entries TimeEntryStore

	// 标准班次时长，超出部分计为加班；来自配置而不是硬编码
	standardShiftHours float64
	// 上班偏差超过该分钟数计为迟到
	lateThresholdMinutes int
}

func NewAttendanceAggregator(recon *ReconciliationEngine, entries TimeEntryStore, standardShiftHours float64, lateThresholdMinutes int) *AttendanceAggregator {
	return &AttendanceAggregator{
		recon:                recon,
		entries:              entries,
		standardShiftHours:   standardShiftHours,
		lateThresholdMinutes: lateThresholdMinutes,
	}
}

func (a *AttendanceAggregator) Summary(ctx context.Context, from, to time.Time, owner string) (*domain.AttendanceSummary, error) {
	summary := &domain.AttendanceSummary{}

	// 总工时按打卡记录统计，与是否匹配到班次无关
	entries, err := a.entries.ListTimeEntries(ctx, TimeEntryFilter{
		From:  from,
		To:    to,
		Owner: owner,
	})
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.Status.Countable() {
			continue
		}
		if hours, ok := entry.HoursWorked(); ok {
			summary.TotalHours += hours
		}
	}

	items, err := a.recon.PlanVsActual(ctx, from, to, owner)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.NoShow {
			summary.MissedCount++
			continue
		}

		summary.ShiftCount++

		if hours, ok := item.Actual.HoursWorked(); ok && hours > a.standardShiftHours {
			summary.OvertimeHours += hours - a.standardShiftHours
		}
		if item.StartDeviationMinutes != nil && *item.StartDeviationMinutes > a.lateThresholdMinutes {
			summary.LateCount++
		}
	}

	// 分母为零时直接返回 0，避免除零
	if summary.ShiftCount > 0 {
		summary.AvgHoursPerShift = summary.TotalHours / float64(summary.ShiftCount)
	}
	if total := len(items); total > 0 {
		summary.AttendanceRate = float64(summary.ShiftCount) / float64(total) * 100
	}

	return summary, nil
}
