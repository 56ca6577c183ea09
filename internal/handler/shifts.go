package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Owner     string    `json:"owner" validate:"required"`
		StartTime time.Time `json:"startTime" validate:"required"`
		EndTime   time.Time `json:"endTime" validate:"required"`
		Role      string    `json:"role" validate:"required"`
		AreaID    *int64    `json:"areaId"`
		Note      string    `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// owner 必须是在职助理
	owner, err := h.repository.GetUserByUsername(r.Context(), req.Owner)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}
	if !owner.IsActive {
		h.errorResponse(w, r, "该助理已离职，无法为其排班")
		return
	}

	shift, err := h.lifecycle.CreateShift(r.Context(), scheduling.CreateShiftParams{
		Owner:     req.Owner,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Role:      req.Role,
		AreaID:    req.AreaID,
		Note:      req.Note,
		CreatedBy: myInfo.Username,
	})
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) EditShift(w http.ResponseWriter, r *http.Request) {
	existing := r.Context().Value(ShiftCtxKey).(*domain.Shift)

	var req struct {
		StartTime *time.Time `json:"startTime"`
		EndTime   *time.Time `json:"endTime"`
		Status    *string    `json:"status" validate:"omitempty,oneof=draft published cancelled"`
		Note      *string    `json:"note"`
		Role      *string    `json:"role"`
		AreaID    *int64     `json:"areaId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	patch := scheduling.ShiftPatch{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
		Role:      req.Role,
		AreaID:    req.AreaID,
	}
	if req.Status != nil {
		status := domain.ShiftStatus(*req.Status)
		patch.Status = &status
	}

	shift, err := h.lifecycle.EditShift(r.Context(), existing.ID, patch)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新班次成功", shift)
}

func (h *Handler) CancelShift(w http.ResponseWriter, r *http.Request) {
	existing := r.Context().Value(ShiftCtxKey).(*domain.Shift)

	shift, err := h.lifecycle.CancelShift(r.Context(), existing.ID)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "取消班次成功", shift)
}

func (h *Handler) PublishShifts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	published, err := h.lifecycle.PublishShifts(r.Context(), req.IDs)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	// 发布成功后给相关助理发送通知邮件，邮件失败不影响发布结果
	if published > 0 {
		h.notifyPublishedShifts(r.Context(), req.IDs)
	}

	h.successResponse(w, r, "发布班次成功", map[string]int{"published": published})
}

// 按 owner 聚合已发布的班次并逐人投递通知邮件
func (h *Handler) notifyPublishedShifts(ctx context.Context, ids []int64) {
	shifts, err := h.repository.GetShiftsByIDs(ctx, ids)
	if err != nil {
		slog.Error("获取已发布班次失败，跳过邮件通知", "error", err)
		return
	}

	byOwner := make(map[string][]*domain.Shift)
	for _, s := range shifts {
		if s.Status != domain.ShiftStatusPublished {
			continue
		}
		byOwner[s.Owner] = append(byOwner[s.Owner], s)
	}
	if len(byOwner) == 0 {
		return
	}

	usernames := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		usernames = append(usernames, owner)
	}

	users, err := h.repository.GetUsersByUsernames(ctx, usernames)
	if err != nil {
		slog.Error("获取助理信息失败，跳过邮件通知", "error", err)
		return
	}

	for _, user := range users {
		ownerShifts := byOwner[user.Username]

		first := ownerShifts[0].StartTime
		last := ownerShifts[0].EndTime
		for _, s := range ownerShifts[1:] {
			if s.StartTime.Before(first) {
				first = s.StartTime
			}
			if s.EndTime.After(last) {
				last = s.EndTime
			}
		}

		mailMessage := domain.MailMessage{
			Type: "shift_published",
			To:   user.Email,
			Data: domain.ShiftPublishedMailData{
				FullName:   user.FullName,
				ShiftCount: len(ownerShifts),
				FirstStart: first.Local().Format("2006-01-02 15:04"),
				LastEnd:    last.Local().Format("2006-01-02 15:04"),
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("序列化班次通知邮件失败", "owner", user.Username, "error", err)
			continue
		}

		publishCtx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			publishCtx,
			"",
			"email_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		)
		cancel()
		if err != nil {
			slog.Error("投递班次通知邮件失败", "owner", user.Username, "error", err)
		}
	}
}

// 管理视角的班次列表，游标分页
func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := scheduling.ShiftFilter{
		Owner: query.Get("owner"),
	}

	if fromParam := query.Get("from"); fromParam != "" {
		from, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			h.errorResponse(w, r, "起始时间格式无效")
			return
		}
		filter.From = from
	}
	if toParam := query.Get("to"); toParam != "" {
		to, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			h.errorResponse(w, r, "结束时间格式无效")
			return
		}
		filter.To = to
	}
	if areaIDParam := query.Get("areaId"); areaIDParam != "" {
		areaID, err := strconv.ParseInt(areaIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "区域ID无效")
			return
		}
		filter.AreaID = &areaID
	}
	if statusParam := query.Get("status"); statusParam != "" {
		status := domain.ShiftStatus(statusParam)
		if !status.IsValid() {
			h.errorResponse(w, r, "班次状态无效")
			return
		}
		filter.Status = status
	}

	limit := h.config.Shifts.DefaultPageSize
	if limitParam := query.Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			h.errorResponse(w, r, "分页大小无效")
			return
		}
		limit = parsed
	}
	if limit > h.config.Shifts.MaxPageSize {
		limit = h.config.Shifts.MaxPageSize
	}

	shifts, nextCursor, err := h.repository.ListShiftsPage(r.Context(), filter, query.Get("cursor"), limit)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", map[string]any{
		"shifts":     shifts,
		"nextCursor": nextCursor,
	})
}
