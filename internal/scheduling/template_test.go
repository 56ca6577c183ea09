package scheduling_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

// 2025-03-09 是周日，即 time.Weekday 编号为 0 的一周起始日
var weekStart = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

func seedTemplate(store *memStore, dayOfWeek int32, startTime, endTime string, active bool) *domain.ShiftTemplate {
	return store.putTemplate(&domain.ShiftTemplate{
		Name:      "测试模板",
		DayOfWeek: dayOfWeek,
		StartTime: startTime,
		EndTime:   endTime,
		Role:      "前台",
		Active:    active,
	})
}

func TestResolveTemplateWindowDayOffset(t *testing.T) {
	tmpl := &domain.ShiftTemplate{DayOfWeek: 3, StartTime: "09:00", EndTime: "12:00"}

	start, end, err := scheduling.ResolveTemplateWindow(tmpl, weekStart)
	if err != nil {
		t.Fatalf("计算班次时间失败: %v", err)
	}

	wantStart := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("期望 %v ~ %v, 实际 %v ~ %v", wantStart, wantEnd, start, end)
	}
}

func TestResolveTemplateWindowNormalizesWeekStart(t *testing.T) {
	tmpl := &domain.ShiftTemplate{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"}

	// weekStart 带有时分秒时应该先归一化到当天零点
	start, _, err := scheduling.ResolveTemplateWindow(tmpl, weekStart.Add(15*time.Hour+30*time.Minute))
	if err != nil {
		t.Fatalf("计算班次时间失败: %v", err)
	}
	if !start.Equal(time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("weekStart 未被归一化: %v", start)
	}
}

func TestResolveTemplateWindowCrossesMidnight(t *testing.T) {
	tmpl := &domain.ShiftTemplate{DayOfWeek: 5, StartTime: "22:00", EndTime: "02:00"}
	if !tmpl.CrossesMidnight() {
		t.Fatal("22:00-02:00 应该被判定为跨午夜")
	}

	start, end, err := scheduling.ResolveTemplateWindow(tmpl, weekStart)
	if err != nil {
		t.Fatalf("计算班次时间失败: %v", err)
	}

	wantStart := time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("跨午夜班次期望 %v ~ %v, 实际 %v ~ %v", wantStart, wantEnd, start, end)
	}
}

func TestGenerateShiftsSkipsConflictingOwner(t *testing.T) {
	store := newMemStore()
	tmpl := seedTemplate(store, 1, "09:00", "12:00", true)

	// ownerA 在目标时间段已有班次
	seedShift(t, store, "zhangwei1",
		time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		domain.ShiftStatusPublished)

	engine := scheduling.NewTemplateEngine(store, store, fixedClock())
	report, err := engine.GenerateShifts(context.Background(), tmpl.ID, weekStart, []string{"zhangwei1", "lina2"})
	if err != nil {
		t.Fatalf("生成班次失败: %v", err)
	}

	if report.Created != 1 {
		t.Fatalf("期望只创建 1 条班次，实际 %d", report.Created)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("期望 2 条 owner 结果，实际 %d", len(report.Outcomes))
	}
	if report.Outcomes[0].Status != scheduling.OutcomeSkipped {
		t.Fatalf("zhangwei1 应该被跳过，实际 %s", report.Outcomes[0].Status)
	}
	if report.Outcomes[1].Status != scheduling.OutcomeCreated {
		t.Fatalf("lina2 应该创建成功，实际 %s", report.Outcomes[1].Status)
	}

	// 生成的班次应该是草稿状态并带有模板引用和默认角色
	shifts, _ := store.ListShifts(context.Background(), scheduling.ShiftFilter{Owner: "lina2"})
	if len(shifts) != 1 {
		t.Fatalf("期望 lina2 有 1 条班次，实际 %d", len(shifts))
	}
	created := shifts[0]
	if created.Status != domain.ShiftStatusDraft {
		t.Fatalf("生成的班次应该是草稿，实际状态 %s", created.Status)
	}
	if created.TemplateID == nil || *created.TemplateID != tmpl.ID {
		t.Fatalf("生成的班次应该引用模板 %d, 实际 %+v", tmpl.ID, created.TemplateID)
	}
	if created.Role != "前台" {
		t.Fatalf("生成的班次应该带有模板的默认角色，实际 %q", created.Role)
	}
}

func TestGenerateShiftsInactiveTemplate(t *testing.T) {
	store := newMemStore()
	tmpl := seedTemplate(store, 1, "09:00", "12:00", false)

	engine := scheduling.NewTemplateEngine(store, store, fixedClock())
	_, err := engine.GenerateShifts(context.Background(), tmpl.ID, weekStart, []string{"zhangwei1"})

	var validationErr *scheduling.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("停用的模板应该返回 ValidationError, 实际 %v", err)
	}
}

func TestGenerateShiftsTemplateNotFound(t *testing.T) {
	store := newMemStore()
	engine := scheduling.NewTemplateEngine(store, store, fixedClock())

	_, err := engine.GenerateShifts(context.Background(), 404, weekStart, []string{"zhangwei1"})

	var notFoundErr *scheduling.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("期望 NotFoundError, 实际 %v", err)
	}
}
