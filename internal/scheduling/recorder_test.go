package scheduling_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

func TestClockInRejectsSecondActiveEntry(t *testing.T) {
	store := newMemStore()
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	if _, err := recorder.ClockIn(context.Background(), "zhangwei1", ""); err != nil {
		t.Fatalf("第一次打卡失败: %v", err)
	}

	_, err := recorder.ClockIn(context.Background(), "zhangwei1", "")
	var alreadyErr *scheduling.AlreadyInStateError
	if !errors.As(err, &alreadyErr) {
		t.Fatalf("期望 AlreadyInStateError, 实际 %v", err)
	}
}

func TestClockInConcurrentSameOwner(t *testing.T) {
	store := newMemStore()
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	// 两个并发打卡只能有一个成功，查重和写入在 owner 锁内串行化
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = recorder.ClockIn(context.Background(), "zhangwei1", "")
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		var alreadyErr *scheduling.AlreadyInStateError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &alreadyErr):
			rejected++
		default:
			t.Fatalf("意外的错误: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("期望恰好一个成功一个被拒绝，实际成功 %d 拒绝 %d", succeeded, rejected)
	}
}

func TestClockInAutoLinksPublishedShift(t *testing.T) {
	store := newMemStore()
	// testNow 为 08:00，命中 07:00-12:00 的已发布班次
	covering := seedShift(t, store, "zhangwei1", at(7, 0), at(12, 0), domain.ShiftStatusPublished)
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	entry, err := recorder.ClockIn(context.Background(), "zhangwei1", "")
	if err != nil {
		t.Fatalf("打卡失败: %v", err)
	}
	if entry.ShiftID == nil || *entry.ShiftID != covering.ID {
		t.Fatalf("应该自动关联班次 %d, 实际 %+v", covering.ID, entry.ShiftID)
	}
	if entry.Status != domain.TimeEntryStatusActive {
		t.Fatalf("新记录状态应该是进行中，实际 %s", entry.Status)
	}
}

func TestClockInDoesNotLinkDraftShift(t *testing.T) {
	store := newMemStore()
	seedShift(t, store, "zhangwei1", at(7, 0), at(12, 0), domain.ShiftStatusDraft)
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	entry, err := recorder.ClockIn(context.Background(), "zhangwei1", "")
	if err != nil {
		t.Fatalf("打卡失败: %v", err)
	}
	if entry.ShiftID != nil {
		t.Fatalf("草稿班次不应该被自动关联，实际关联了 %d", *entry.ShiftID)
	}
}

func TestClockOutCompletesEntry(t *testing.T) {
	store := newMemStore()
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	entry, err := recorder.ClockIn(context.Background(), "zhangwei1", "")
	if err != nil {
		t.Fatalf("上班打卡失败: %v", err)
	}

	completed, err := recorder.ClockOut(context.Background(), entry.ID, "下班")
	if err != nil {
		t.Fatalf("下班打卡失败: %v", err)
	}
	if completed.Status != domain.TimeEntryStatusCompleted {
		t.Fatalf("期望状态为已完成，实际 %s", completed.Status)
	}
	if completed.ClockOut == nil || !completed.ClockOut.Equal(testNow) {
		t.Fatalf("下班时间应该是当前时刻，实际 %+v", completed.ClockOut)
	}

	// 已完成的记录不允许再次下班打卡
	_, err = recorder.ClockOut(context.Background(), entry.ID, "")
	var notFoundErr *scheduling.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("期望 NotFoundError, 实际 %v", err)
	}
}

func TestEditTimeEntryValidatesAndMarksEdited(t *testing.T) {
	store := newMemStore()
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	entry, err := recorder.ClockIn(context.Background(), "zhangwei1", "")
	if err != nil {
		t.Fatalf("打卡失败: %v", err)
	}

	// 下班时间早于上班时间应该被拒绝
	badOut := testNow.Add(-time.Hour)
	_, err = recorder.EditTimeEntry(context.Background(), entry.ID, scheduling.TimeEntryPatch{ClockOut: &badOut}, "admin")
	var validationErr *scheduling.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("期望 ValidationError, 实际 %v", err)
	}

	goodOut := testNow.Add(8 * time.Hour)
	edited, err := recorder.EditTimeEntry(context.Background(), entry.ID, scheduling.TimeEntryPatch{ClockOut: &goodOut}, "admin")
	if err != nil {
		t.Fatalf("修改打卡记录失败: %v", err)
	}
	if edited.Status != domain.TimeEntryStatusEdited {
		t.Fatalf("修改后状态应该是 edited, 实际 %s", edited.Status)
	}
	if edited.EditedBy != "admin" {
		t.Fatalf("应该记录修改人，实际 %q", edited.EditedBy)
	}
	if hours, ok := edited.HoursWorked(); !ok || hours != 8 {
		t.Fatalf("期望工时为 8 小时，实际 %v (%v)", hours, ok)
	}
}

func TestDeleteTimeEntry(t *testing.T) {
	store := newMemStore()
	recorder := scheduling.NewTimeEntryRecorder(store, store, fixedClock())

	entry, err := recorder.ClockIn(context.Background(), "zhangwei1", "")
	if err != nil {
		t.Fatalf("打卡失败: %v", err)
	}

	deleted, err := recorder.DeleteTimeEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("删除打卡记录失败: %v", err)
	}
	// 删除接口要把被删的记录返回给调用方
	if deleted.ID != entry.ID || deleted.Owner != entry.Owner {
		t.Fatalf("应该返回被删除的记录，期望 %d/%s, 实际 %d/%s", entry.ID, entry.Owner, deleted.ID, deleted.Owner)
	}

	_, err = recorder.DeleteTimeEntry(context.Background(), entry.ID)
	var notFoundErr *scheduling.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("重复删除应该返回 NotFoundError, 实际 %v", err)
	}
}
