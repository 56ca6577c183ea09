package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Note string `json:"note"`
	}

	// 上班打卡允许空请求体
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.recorder.ClockIn(r.Context(), myInfo.Username, req.Note)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "上班打卡成功", entry)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	existing := r.Context().Value(TimeEntryCtxKey).(*domain.TimeEntry)

	var req struct {
		Note string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	// 只能对自己的打卡记录下班打卡
	if existing.Owner != myInfo.Username {
		h.errorResponse(w, r, "只能操作自己的打卡记录")
		return
	}

	entry, err := h.recorder.ClockOut(r.Context(), existing.ID, req.Note)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "下班打卡成功", entry)
}

func (h *Handler) GetMyActiveTimeEntry(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	entry, err := h.repository.GetActiveTimeEntryByOwner(r.Context(), myInfo.Username)
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrRecordNotFound):
			h.successResponse(w, r, "当前没有进行中的打卡", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取进行中的打卡成功", entry)
}

func (h *Handler) EditTimeEntry(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	existing := r.Context().Value(TimeEntryCtxKey).(*domain.TimeEntry)

	var req struct {
		ClockIn  *time.Time `json:"clockIn"`
		ClockOut *time.Time `json:"clockOut"`
		Note     *string    `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.recorder.EditTimeEntry(r.Context(), existing.ID, scheduling.TimeEntryPatch{
		ClockIn:  req.ClockIn,
		ClockOut: req.ClockOut,
		Note:     req.Note,
	}, myInfo.Username)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "修正打卡记录成功", entry)
}

func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	existing := r.Context().Value(TimeEntryCtxKey).(*domain.TimeEntry)

	deleted, err := h.recorder.DeleteTimeEntry(r.Context(), existing.ID)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除打卡记录成功", deleted)
}
