package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// TemplateEngine 把每周循环的班次模板展开成某一周的具体班次
type TemplateEngine struct {
	shifts    ShiftStore
	templates TemplateStore
	detector  OverlapDetector
	clock     Clock
}

func NewTemplateEngine(shifts ShiftStore, templates TemplateStore, clock Clock) *TemplateEngine {
	return &TemplateEngine{
		shifts:    shifts,
		templates: templates,
		clock:     clock,
	}
}

type OwnerOutcomeStatus string

const (
	OutcomeCreated OwnerOutcomeStatus = "created"
	OutcomeSkipped OwnerOutcomeStatus = "skipped" // 该 owner 在目标时间段已有班次
	OutcomeFailed  OwnerOutcomeStatus = "failed"
)

type OwnerOutcome struct {
	Owner  string
	Status OwnerOutcomeStatus
	Err    error
}

type GenerationReport struct {
	TemplateID int64
	Created    int
	Outcomes   []OwnerOutcome
}

// 按模板为一组 owner 生成某一周的班次。
// 生成是尽力而为的批量操作：某个 owner 存在冲突时只跳过该 owner，
// 不影响其他 owner，也不会报错。每个 owner 的结果都单独记录在报告中。
func (e *TemplateEngine) GenerateShifts(ctx context.Context, templateID int64, weekStart time.Time, owners []string) (*GenerationReport, error) {
	tmpl, err := e.templates.GetShiftTemplateByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "班次模板", ID: templateID}
		}
		return nil, err
	}
	if !tmpl.Active {
		return nil, &ValidationError{Message: "班次模板已停用"}
	}

	shiftStart, shiftEnd, err := ResolveTemplateWindow(tmpl, weekStart)
	if err != nil {
		return nil, err
	}

	report := &GenerationReport{
		TemplateID: templateID,
		Outcomes:   make([]OwnerOutcome, 0, len(owners)),
	}

	now := e.clock.Now()
	for _, owner := range owners {
		outcome := OwnerOutcome{Owner: owner}

		// 每个 owner 都是独立的工作单元，单独开启 owner 事务，
		// 一个 owner 的失败不会回滚其他 owner 的结果
		err := e.shifts.InOwnerTx(ctx, owner, func(tx ShiftStore) error {
			conflict, err := e.detector.FindConflict(ctx, tx, owner, shiftStart, shiftEnd, 0)
			if err != nil {
				return err
			}
			if conflict != nil {
				outcome.Status = OutcomeSkipped
				return nil
			}

			tid := tmpl.ID
			shift := &domain.Shift{
				Owner:      owner,
				StartTime:  shiftStart,
				EndTime:    shiftEnd,
				Status:     domain.ShiftStatusDraft,
				Role:       tmpl.Role,
				AreaID:     tmpl.AreaID,
				TemplateID: &tid,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.CreateShift(ctx, shift); err != nil {
				return err
			}
			outcome.Status = OutcomeCreated
			return nil
		})
		if err != nil {
			outcome.Status = OutcomeFailed
			outcome.Err = err
		}
		if outcome.Status == OutcomeCreated {
			report.Created++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}

// 根据模板和周起始日期计算具体班次的起止时刻。
// weekStart 会被归一化到当天零点；跨午夜的模板其结束时刻落在次日。
func ResolveTemplateWindow(tmpl *domain.ShiftTemplate, weekStart time.Time) (time.Time, time.Time, error) {
	startHour, startMinute, err := domain.ParseClockTime(tmpl.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Message: err.Error()}
	}
	endHour, endMinute, err := domain.ParseClockTime(tmpl.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Message: err.Error()}
	}

	// 归一化到日期边界
	year, month, day := weekStart.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, weekStart.Location())

	// 从 weekStart 向后找到第一个匹配 dayOfWeek 的日期
	offset := (int(tmpl.DayOfWeek) - int(dayStart.Weekday()) + 7) % 7
	targetDate := dayStart.AddDate(0, 0, offset)

	shiftStart := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), startHour, startMinute, 0, 0, targetDate.Location())
	shiftEnd := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), endHour, endMinute, 0, 0, targetDate.Location())
	if tmpl.CrossesMidnight() {
		shiftEnd = shiftEnd.AddDate(0, 0, 1)
	}

	return shiftStart, shiftEnd, nil
}
