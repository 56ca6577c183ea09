package scheduling

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// 时钟接口，生产环境使用 time.Now，测试中注入固定时钟
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// 按条件筛选班次，From/To 为左闭右开区间，和班次的 [start, end) 相交即命中。
// 零值字段表示不筛选。
type ShiftFilter struct {
	From   time.Time
	To     time.Time
	Owner  string
	AreaID *int64
	Status domain.ShiftStatus
}

// 按条件筛选打卡记录，From/To 按 ClockIn 所在的 [From, To) 区间筛选。
type TimeEntryFilter struct {
	From     time.Time
	To       time.Time
	Owner    string
	ShiftIDs []int64
}

type ShiftStore interface {
	GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error)
	// 返回该 owner 所有和 [from, to) 相交的非取消班次，按开始时间升序
	GetOwnerShiftsInWindow(ctx context.Context, owner string, from, to time.Time) ([]*domain.Shift, error)
	CreateShift(ctx context.Context, shift *domain.Shift) error
	UpdateShift(ctx context.Context, shift *domain.Shift) error
	// 只转移当前状态为 from 的记录，返回实际转移的数量
	UpdateShiftsStatus(ctx context.Context, ids []int64, from, to domain.ShiftStatus) (int, error)
	// 按开始时间升序返回
	ListShifts(ctx context.Context, filter ShiftFilter) ([]*domain.Shift, error)
	// 在以 owner 为粒度的互斥事务中执行 fn，保证先查冲突再写入的序列不会交错。
	// fn 收到的是事务作用域内的 store。
	InOwnerTx(ctx context.Context, owner string, fn func(tx ShiftStore) error) error
}

type TemplateStore interface {
	GetShiftTemplateByID(ctx context.Context, id int64) (*domain.ShiftTemplate, error)
}

type TimeEntryStore interface {
	GetTimeEntryByID(ctx context.Context, id int64) (*domain.TimeEntry, error)
	// 不存在进行中的记录时返回 ErrRecordNotFound
	GetActiveTimeEntryByOwner(ctx context.Context, owner string) (*domain.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	UpdateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error
	DeleteTimeEntry(ctx context.Context, id int64) error
	// 按 ClockIn 升序返回
	ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]*domain.TimeEntry, error)
}
