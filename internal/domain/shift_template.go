package domain

import (
	"fmt"
	"time"
)

type ShiftTemplate struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DayOfWeek   int32     `json:"dayOfWeek"` // 0~6，0 为周日，与 time.Weekday 的编号一致
	StartTime   string    `json:"startTime"` // "HH:MM"
	EndTime     string    `json:"endTime"`   // "HH:MM"
	Role        string    `json:"role,omitempty"`
	AreaID      *int64    `json:"areaID,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     int32     `json:"-"`
}

// 当结束时间的字典序小于开始时间时，表示该班次跨越了午夜
func (t *ShiftTemplate) CrossesMidnight() bool {
	return t.EndTime < t.StartTime
}

// 解析 "HH:MM" 格式的墙上时间，返回时和分
func ParseClockTime(s string) (hour int, minute int, err error) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("时间 %q 不是合法的 HH:MM 格式", s)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// 校验模板字段的合法性，供创建和更新时调用
func (t *ShiftTemplate) Validate() error {
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return fmt.Errorf("dayOfWeek 必须在 0 到 6 之间")
	}
	if _, _, err := ParseClockTime(t.StartTime); err != nil {
		return err
	}
	if _, _, err := ParseClockTime(t.EndTime); err != nil {
		return err
	}
	if t.StartTime == t.EndTime {
		return fmt.Errorf("开始时间和结束时间不能相同")
	}
	return nil
}
