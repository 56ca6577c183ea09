package scheduling

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// OverlapDetector 是一个纯查询组件：判断某个 owner 在 [start, end) 内
// 是否已有非取消的班次。没有任何副作用。
type OverlapDetector struct{}

// 返回第一个冲突的班次（按开始时间排序），没有冲突时返回 nil。
// excludeID 用于编辑操作排除正在编辑的班次本身，传 0 表示不排除。
// store 由调用方传入，使得检测可以运行在调用方的事务作用域内。
func (OverlapDetector) FindConflict(ctx context.Context, store ShiftStore, owner string, start, end time.Time, excludeID int64) (*domain.Shift, error) {
	candidates, err := store.GetOwnerShiftsInWindow(ctx, owner, start, end)
	if err != nil {
		return nil, err
	}

	for _, shift := range candidates {
		if shift.ID == excludeID {
			continue
		}
		if shift.Status == domain.ShiftStatusCancelled {
			continue
		}
		// 两个左闭右开区间 [s1,e1) 和 [s2,e2) 冲突当且仅当 s1 < e2 且 s2 < e1
		if shift.Overlaps(start, end) {
			return shift, nil
		}
	}

	return nil, nil
}
