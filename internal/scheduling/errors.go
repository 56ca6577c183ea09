package scheduling

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// 存储层在记录不存在时返回该错误，由各个组件转换成对外的 NotFoundError
var ErrRecordNotFound = errors.New("记录不存在")

// 请求中的记录 ID 不存在
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d 不存在", e.Resource, e.ID)
}

// 请求参数不合法
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// 班次时间和该 owner 已有的班次冲突
type ConflictError struct {
	Owner       string
	Conflicting *domain.Shift
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s 在该时间段已有班次 %d", e.Owner, e.Conflicting.ID)
}

// 记录已经处于目标状态，或处于不允许该操作的状态
type AlreadyInStateError struct {
	Message string
}

func (e *AlreadyInStateError) Error() string {
	return e.Message
}
