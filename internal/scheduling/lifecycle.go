package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// ShiftLifecycleManager 负责单个班次的创建、编辑、取消和批量发布
type ShiftLifecycleManager struct {
	store    ShiftStore
	detector OverlapDetector
	clock    Clock
}

func NewShiftLifecycleManager(store ShiftStore, clock Clock) *ShiftLifecycleManager {
	return &ShiftLifecycleManager{
		store: store,
		clock: clock,
	}
}

type CreateShiftParams struct {
	Owner     string
	StartTime time.Time
	EndTime   time.Time
	Role      string
	AreaID    *int64
	Note      string
	CreatedBy string
}

func (m *ShiftLifecycleManager) CreateShift(ctx context.Context, params CreateShiftParams) (*domain.Shift, error) {
	if !params.EndTime.After(params.StartTime) {
		return nil, &ValidationError{Message: "班次的结束时间必须晚于开始时间"}
	}

	now := m.clock.Now()
	shift := &domain.Shift{
		Owner:     params.Owner,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
		Status:    domain.ShiftStatusDraft,
		Role:      params.Role,
		AreaID:    params.AreaID,
		Note:      params.Note,
		CreatedBy: params.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 冲突检测和写入必须在同一个以 owner 为粒度的事务中完成，
	// 否则两个并发请求可能都通过检测并各自写入冲突的班次
	err := m.store.InOwnerTx(ctx, params.Owner, func(tx ShiftStore) error {
		conflict, err := m.detector.FindConflict(ctx, tx, params.Owner, params.StartTime, params.EndTime, 0)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{Owner: params.Owner, Conflicting: conflict}
		}
		return tx.CreateShift(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	return shift, nil
}

type ShiftPatch struct {
	StartTime *time.Time
	EndTime   *time.Time
	Status    *domain.ShiftStatus
	Note      *string
	Role      *string
	AreaID    *int64
}

func (m *ShiftLifecycleManager) EditShift(ctx context.Context, id int64, patch ShiftPatch) (*domain.Shift, error) {
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, &ValidationError{Message: "无效的班次状态"}
	}

	// 先加载一次以取得 owner，真正的检查和更新在 owner 事务内用新加载的记录完成
	existing, err := m.store.GetShiftByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "班次", ID: id}
		}
		return nil, err
	}

	var updated *domain.Shift
	err = m.store.InOwnerTx(ctx, existing.Owner, func(tx ShiftStore) error {
		shift, err := tx.GetShiftByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return &NotFoundError{Resource: "班次", ID: id}
			}
			return err
		}

		newStart := shift.StartTime
		newEnd := shift.EndTime
		if patch.StartTime != nil {
			newStart = *patch.StartTime
		}
		if patch.EndTime != nil {
			newEnd = *patch.EndTime
		}
		if !newEnd.After(newStart) {
			return &ValidationError{Message: "班次的结束时间必须晚于开始时间"}
		}

		timeChanged := !newStart.Equal(shift.StartTime) || !newEnd.Equal(shift.EndTime)
		if timeChanged {
			conflict, err := m.detector.FindConflict(ctx, tx, shift.Owner, newStart, newEnd, shift.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return &ConflictError{Owner: shift.Owner, Conflicting: conflict}
			}
		}

		shift.StartTime = newStart
		shift.EndTime = newEnd
		if patch.Status != nil {
			shift.Status = *patch.Status
		}
		if patch.Note != nil {
			shift.Note = *patch.Note
		}
		if patch.Role != nil {
			shift.Role = *patch.Role
		}
		if patch.AreaID != nil {
			shift.AreaID = patch.AreaID
		}
		shift.UpdatedAt = m.clock.Now()

		if err := tx.UpdateShift(ctx, shift); err != nil {
			return err
		}
		updated = shift
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (m *ShiftLifecycleManager) CancelShift(ctx context.Context, id int64) (*domain.Shift, error) {
	shift, err := m.store.GetShiftByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "班次", ID: id}
		}
		return nil, err
	}

	if shift.Status == domain.ShiftStatusCancelled {
		return nil, &AlreadyInStateError{Message: "班次已被取消"}
	}

	// 取消是状态转移而不是物理删除
	shift.Status = domain.ShiftStatusCancelled
	shift.UpdatedAt = m.clock.Now()
	if err := m.store.UpdateShift(ctx, shift); err != nil {
		return nil, err
	}

	return shift, nil
}

// 批量发布是尽力而为的操作：只转移处于草稿状态的班次，
// 不存在、已发布或已取消的 ID 会被静默跳过而不是报错。
// 返回实际发布的数量。
func (m *ShiftLifecycleManager) PublishShifts(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return m.store.UpdateShiftsStatus(ctx, ids, domain.ShiftStatusDraft, domain.ShiftStatusPublished)
}
