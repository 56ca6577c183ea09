package domain

import (
	"time"
)

type Role string

const (
	RoleNormalAssistant Role = "普通助理"
	RoleSeniorAssistant Role = "资深助理"
	RoleBlackCore       Role = "黑心"
)

// 是否拥有排班管理权限（创建/编辑/发布班次等）
func (r Role) CanManageShifts() bool {
	return r == RoleSeniorAssistant || r == RoleBlackCore
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"` // 班次和打卡记录都以 username 作为 owner 标识
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
