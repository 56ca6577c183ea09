package domain

import (
	"time"
)

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"
	ShiftStatusPublished ShiftStatus = "published"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

// 判断状态是否是合法的班次状态
func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftStatusDraft, ShiftStatusPublished, ShiftStatusCancelled:
		return true
	default:
		return false
	}
}

type Shift struct {
	ID         int64       `json:"id"`
	Owner      string      `json:"owner"` // 对应 users 表中的 username
	StartTime  time.Time   `json:"startTime"`
	EndTime    time.Time   `json:"endTime"`
	Status     ShiftStatus `json:"status"`
	Role       string      `json:"role,omitempty"`
	AreaID     *int64      `json:"areaID,omitempty"`
	TemplateID *int64      `json:"templateID,omitempty"` // 由哪个班次模板生成，手动创建的班次为空
	Note       string      `json:"note,omitempty"`
	CreatedBy  string      `json:"createdBy,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Version    int32       `json:"-"`
}

// 两个班次的时间区间均为左闭右开区间 [start, end)
func (s *Shift) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}

// 判断某个时刻是否落在班次的时间区间内
func (s *Shift) Contains(t time.Time) bool {
	return !t.Before(s.StartTime) && t.Before(s.EndTime)
}
