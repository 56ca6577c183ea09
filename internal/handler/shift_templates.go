package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

func (h *Handler) GetAllShiftTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repository.GetAllShiftTemplates(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次模板列表成功", templates)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)
	h.successResponse(w, r, "获取班次模板成功", tmpl)
}

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		DayOfWeek   *int32 `json:"dayOfWeek" validate:"required"`
		StartTime   string `json:"startTime" validate:"required"`
		EndTime     string `json:"endTime" validate:"required"`
		Role        string `json:"role"`
		AreaID      *int64 `json:"areaId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	tmpl := &domain.ShiftTemplate{
		Name:        req.Name,
		Description: req.Description,
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Role:        req.Role,
		AreaID:      req.AreaID,
		Active:      true, // 新建的模板默认启用
	}

	if err := tmpl.Validate(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateShiftTemplate(r.Context(), tmpl); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建班次模板成功", tmpl)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		DayOfWeek   *int32  `json:"dayOfWeek"`
		StartTime   *string `json:"startTime"`
		EndTime     *string `json:"endTime"`
		Role        *string `json:"role"`
		AreaID      *int64  `json:"areaId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Description != nil {
		tmpl.Description = *req.Description
	}
	if req.DayOfWeek != nil {
		tmpl.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		tmpl.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		tmpl.EndTime = *req.EndTime
	}
	if req.Role != nil {
		tmpl.Role = *req.Role
	}
	if req.AreaID != nil {
		tmpl.AreaID = req.AreaID
	}

	if err := tmpl.Validate(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateShiftTemplate(r.Context(), tmpl); err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新班次模板成功", tmpl)
}

func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if err := h.repository.DeleteShiftTemplate(r.Context(), tmpl.ID); err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除班次模板成功", tmpl)
}

// 启用和停用在同一个接口上切换，停用的模板不能再用于生成班次
func (h *Handler) ToggleShiftTemplateActive(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	tmpl.Active = !tmpl.Active
	if err := h.repository.UpdateShiftTemplate(r.Context(), tmpl); err != nil {
		h.schedulingError(w, r, err)
		return
	}

	msg := "启用班次模板成功"
	if !tmpl.Active {
		msg = "停用班次模板成功"
	}
	h.successResponse(w, r, msg, tmpl)
}

func (h *Handler) GenerateShiftsFromTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	var req struct {
		WeekStart time.Time `json:"weekStart" validate:"required"`
		Owners    []string  `json:"owners" validate:"required,min=1,unique"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	report, err := h.templateEngine.GenerateShifts(r.Context(), tmpl.ID, req.WeekStart, req.Owners)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	// 报告里的错误转成字符串，方便前端展示
	type outcomeResponse struct {
		Owner  string `json:"owner"`
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	outcomes := make([]outcomeResponse, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		resp := outcomeResponse{
			Owner:  o.Owner,
			Status: string(o.Status),
		}
		if o.Err != nil {
			resp.Error = o.Err.Error()
		}
		outcomes = append(outcomes, resp)
	}

	h.successResponse(w, r, "生成班次完成", map[string]any{
		"templateId": report.TemplateID,
		"created":    report.Created,
		"outcomes":   outcomes,
	})
}
