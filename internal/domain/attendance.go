package domain

// 偏差的严重程度分级
type DeviationSeverity string

const (
	SeverityGood   DeviationSeverity = "good"
	SeverityWarn   DeviationSeverity = "warn"
	SeveritySevere DeviationSeverity = "severe"
)

// 单个班次的计划与实际的对账结果。
// StartDeviationMinutes 为 nil 表示旷班（没有任何匹配的打卡记录），
// EndDeviationMinutes 为 nil 表示打卡记录尚未闭合（仅在存在上班打卡时有意义）。
type PlanVsActualItem struct {
	Shift                 *Shift            `json:"shift"`
	Actual                *TimeEntry        `json:"actual,omitempty"`
	StartDeviationMinutes *int              `json:"startDeviationMinutes"`
	EndDeviationMinutes   *int              `json:"endDeviationMinutes"`
	StartSeverity         DeviationSeverity `json:"startSeverity"`
	EndSeverity           DeviationSeverity `json:"endSeverity"`
	NoShow                bool              `json:"noShow"`
}

type AttendanceSummary struct {
	TotalHours       float64 `json:"totalHours"`
	ShiftCount       int     `json:"shiftCount"` // 已发布且有匹配打卡记录的班次数
	AvgHoursPerShift float64 `json:"avgHoursPerShift"`
	OvertimeHours    float64 `json:"overtimeHours"`
	AttendanceRate   float64 `json:"attendanceRate"` // 百分比
	LateCount        int     `json:"lateCount"`
	MissedCount      int     `json:"missedCount"`
}
