package domain

import (
	"time"
)

type TimeEntryStatus string

const (
	TimeEntryStatusActive     TimeEntryStatus = "active"
	TimeEntryStatusCompleted  TimeEntryStatus = "completed"
	TimeEntryStatusAutoClosed TimeEntryStatus = "auto_closed" // 由外部的超时清理任务写入，本系统只读取
	TimeEntryStatusEdited     TimeEntryStatus = "edited"
)

func (s TimeEntryStatus) IsValid() bool {
	switch s {
	case TimeEntryStatusActive, TimeEntryStatusCompleted, TimeEntryStatusAutoClosed, TimeEntryStatusEdited:
		return true
	default:
		return false
	}
}

// 判断该状态下的工时是否应该计入考勤统计
func (s TimeEntryStatus) Countable() bool {
	switch s {
	case TimeEntryStatusCompleted, TimeEntryStatusEdited, TimeEntryStatusAutoClosed:
		return true
	default:
		return false
	}
}

type TimeEntry struct {
	ID        int64           `json:"id"`
	Owner     string          `json:"owner"`
	ClockIn   time.Time       `json:"clockIn"`
	ClockOut  *time.Time      `json:"clockOut,omitempty"`
	Status    TimeEntryStatus `json:"status"`
	ShiftID   *int64          `json:"shiftID,omitempty"`
	Note      string          `json:"note,omitempty"`
	EditedBy  string          `json:"editedBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Version   int32           `json:"-"`
}

// 工时是派生值而不是存储值，只有打卡记录闭合之后才有意义
func (e *TimeEntry) HoursWorked() (float64, bool) {
	if e.ClockOut == nil {
		return 0, false
	}
	return e.ClockOut.Sub(e.ClockIn).Hours(), true
}
