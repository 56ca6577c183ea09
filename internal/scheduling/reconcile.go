package scheduling

import (
	"context"
	"math"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// ReconciliationEngine 把计划时间线（班次）和实际时间线（打卡记录）
// 按 ShiftID 匹配起来，并计算每个班次的上下班偏差
type ReconciliationEngine struct {
	shifts  ShiftStore
	entries TimeEntryStore
}

func NewReconciliationEngine(shifts ShiftStore, entries TimeEntryStore) *ReconciliationEngine {
	return &ReconciliationEngine{
		shifts:  shifts,
		entries: entries,
	}
}

// 对 [from, to) 内所有已发布的班次做对账，owner 为空表示不筛选。
// 打卡记录的 ShiftID 可能指向已不存在的班次（两条时间线最终一致），
// 这种记录在这里会被直接忽略。
func (e *ReconciliationEngine) PlanVsActual(ctx context.Context, from, to time.Time, owner string) ([]*domain.PlanVsActualItem, error) {
	shifts, err := e.shifts.ListShifts(ctx, ShiftFilter{
		From:   from,
		To:     to,
		Owner:  owner,
		Status: domain.ShiftStatusPublished,
	})
	if err != nil {
		return nil, err
	}

	if len(shifts) == 0 {
		return []*domain.PlanVsActualItem{}, nil
	}

	shiftIDs := make([]int64, 0, len(shifts))
	for _, shift := range shifts {
		shiftIDs = append(shiftIDs, shift.ID)
	}

	entries, err := e.entries.ListTimeEntries(ctx, TimeEntryFilter{ShiftIDs: shiftIDs})
	if err != nil {
		return nil, err
	}

	// 同一个班次被多条打卡记录引用时，取 ClockIn 最早的那条
	entryByShift := make(map[int64]*domain.TimeEntry)
	for _, entry := range entries {
		if entry.ShiftID == nil {
			continue
		}
		existing, ok := entryByShift[*entry.ShiftID]
		if !ok || entry.ClockIn.Before(existing.ClockIn) {
			entryByShift[*entry.ShiftID] = entry
		}
	}

	items := make([]*domain.PlanVsActualItem, 0, len(shifts))
	for _, shift := range shifts {
		item := &domain.PlanVsActualItem{Shift: shift}

		entry, matched := entryByShift[shift.ID]
		if matched {
			item.Actual = entry
			start := DeviationMinutes(shift.StartTime, entry.ClockIn)
			item.StartDeviationMinutes = &start
			if entry.ClockOut != nil {
				end := DeviationMinutes(shift.EndTime, *entry.ClockOut)
				item.EndDeviationMinutes = &end
			}
		} else {
			item.NoShow = true
		}

		item.StartSeverity = ClassifyDeviation(item.StartDeviationMinutes)
		item.EndSeverity = ClassifyDeviation(item.EndDeviationMinutes)
		items = append(items, item)
	}

	return items, nil
}

// 计算实际时刻相对计划时刻的有符号分钟偏差，正值表示晚于计划
func DeviationMinutes(planned, actual time.Time) int {
	return int(math.Round(actual.Sub(planned).Minutes()))
}

// 把分钟偏差映射为严重程度的纯函数，上班和下班两个指标共用。
// nil 表示没有对应的打卡，按最严重处理；0 表示准时。
func ClassifyDeviation(minutes *int) domain.DeviationSeverity {
	if minutes == nil {
		return domain.SeveritySevere
	}

	abs := *minutes
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs <= 10:
		return domain.SeverityGood
	case abs <= 30:
		return domain.SeverityWarn
	default:
		return domain.SeveritySevere
	}
}
