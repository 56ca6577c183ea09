package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "旧密码错误")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateUser(r.Context(), myInfo); err != nil {
		switch {
		case errors.Is(err, scheduling.ErrRecordNotFound):
			h.errorResponse(w, r, "更新密码失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新密码成功", nil)
}

// 获取自己在指定时间范围内的班次，默认返回未来一周
func (h *Handler) GetMyShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	from, to, err := h.parseTimeRange(r, defaultMyShiftsRange)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	shifts, err := h.repository.ListShifts(r.Context(), scheduling.ShiftFilter{
		From:  from,
		To:    to,
		Owner: myInfo.Username,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 普通助理只应该看到已发布的班次
	visible := make([]*domain.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.Status == domain.ShiftStatusPublished || myInfo.Role.CanManageShifts() {
			visible = append(visible, s)
		}
	}

	h.successResponse(w, r, "获取我的班次成功", visible)
}
