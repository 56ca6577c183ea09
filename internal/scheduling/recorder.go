package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// TimeEntryRecorder 负责记录实际的上下班打卡，
// 打卡时间线和班次时间线相互独立，只通过 ShiftID 松散关联
type TimeEntryRecorder struct {
	entries TimeEntryStore
	shifts  ShiftStore
	clock   Clock
}

func NewTimeEntryRecorder(entries TimeEntryStore, shifts ShiftStore, clock Clock) *TimeEntryRecorder {
	return &TimeEntryRecorder{
		entries: entries,
		shifts:  shifts,
		clock:   clock,
	}
}

func (r *TimeEntryRecorder) ClockIn(ctx context.Context, owner string, note string) (*domain.TimeEntry, error) {
	now := r.clock.Now()

	// 查重和写入必须整体持有 owner 锁，否则并发打卡可能产生两条进行中的记录
	var entry *domain.TimeEntry
	err := r.shifts.InOwnerTx(ctx, owner, func(tx ShiftStore) error {
		// 同一 owner 同时只能有一条进行中的打卡记录
		if _, err := r.entries.GetActiveTimeEntryByOwner(ctx, owner); err == nil {
			return &AlreadyInStateError{Message: "已存在进行中的打卡记录"}
		} else if !errors.Is(err, ErrRecordNotFound) {
			return err
		}

		// 自动关联当前时刻所在的已发布班次（草稿班次对助理不可见，不关联）。
		// 若同时命中多个班次，取开始时间最早的那个。
		var shiftID *int64
		candidates, err := tx.GetOwnerShiftsInWindow(ctx, owner, now, now.Add(time.Nanosecond))
		if err != nil {
			return err
		}
		for _, shift := range candidates {
			if shift.Status == domain.ShiftStatusPublished && shift.Contains(now) {
				id := shift.ID
				shiftID = &id
				break
			}
		}

		entry = &domain.TimeEntry{
			Owner:     owner,
			ClockIn:   now,
			Status:    domain.TimeEntryStatusActive,
			ShiftID:   shiftID,
			Note:      note,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return r.entries.CreateTimeEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *TimeEntryRecorder) ClockOut(ctx context.Context, entryID int64, note string) (*domain.TimeEntry, error) {
	entry, err := r.entries.GetTimeEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "打卡记录", ID: entryID}
		}
		return nil, err
	}

	// 非进行中的记录对下班打卡而言等同于不存在
	if entry.Status != domain.TimeEntryStatusActive {
		return nil, &NotFoundError{Resource: "进行中的打卡记录", ID: entryID}
	}

	now := r.clock.Now()
	entry.ClockOut = &now
	entry.Status = domain.TimeEntryStatusCompleted
	if note != "" {
		entry.Note = note
	}
	entry.UpdatedAt = now

	if err := r.entries.UpdateTimeEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

type TimeEntryPatch struct {
	ClockIn  *time.Time
	ClockOut *time.Time
	Note     *string
}

// 管理员对打卡时间的修正，修正后的记录状态变为 edited
func (r *TimeEntryRecorder) EditTimeEntry(ctx context.Context, id int64, patch TimeEntryPatch, editor string) (*domain.TimeEntry, error) {
	entry, err := r.entries.GetTimeEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "打卡记录", ID: id}
		}
		return nil, err
	}

	newClockIn := entry.ClockIn
	if patch.ClockIn != nil {
		newClockIn = *patch.ClockIn
	}
	newClockOut := entry.ClockOut
	if patch.ClockOut != nil {
		newClockOut = patch.ClockOut
	}
	if newClockOut != nil && !newClockOut.After(newClockIn) {
		return nil, &ValidationError{Message: "下班打卡时间必须晚于上班打卡时间"}
	}

	entry.ClockIn = newClockIn
	entry.ClockOut = newClockOut
	if patch.Note != nil {
		entry.Note = *patch.Note
	}
	entry.Status = domain.TimeEntryStatusEdited
	entry.EditedBy = editor
	entry.UpdatedAt = r.clock.Now()

	if err := r.entries.UpdateTimeEntry(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *TimeEntryRecorder) DeleteTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	entry, err := r.entries.GetTimeEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "打卡记录", ID: id}
		}
		return nil, err
	}

	if err := r.entries.DeleteTimeEntry(ctx, id); err != nil {
		return nil, err
	}

	return entry, nil
}
