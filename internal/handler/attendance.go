package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
)

// 排班与实际打卡的逐班次对账，owner 为空时返回范围内所有人的结果
func (h *Handler) PlanVsActual(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parseTimeRange(r, -defaultAttendanceRange)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	owner := r.URL.Query().Get("owner")

	items, err := h.reconciliation.PlanVsActual(r.Context(), from, to, owner)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取考勤对账结果成功", items)
}

func (h *Handler) GetAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parseTimeRange(r, -defaultAttendanceRange)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// owner 为空表示统计范围内的所有助理
	owner := r.URL.Query().Get("owner")

	// 汇总计算涉及多次查询，结果按 (owner, from, to) 在 redis 中缓存一段时间
	cacheKey := fmt.Sprintf("attendance_summary_%s_%d_%d", owner, from.Unix(), to.Unix())

	cached, err := h.redisClient.Get(r.Context(), cacheKey).Result()
	if err == nil {
		var summary domain.AttendanceSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			h.successResponse(w, r, "获取考勤汇总成功", &summary)
			return
		}
		// 缓存内容损坏时当作未命中，重新计算
	} else if err != redis.Nil {
		slog.Error("读取考勤汇总缓存失败", "error", err)
	}

	summary, err := h.aggregator.Summary(r.Context(), from, to, owner)
	if err != nil {
		h.schedulingError(w, r, err)
		return
	}

	if data, err := json.Marshal(summary); err == nil {
		expiration := time.Duration(h.config.Attendance.SummaryCacheExpiration) * time.Second
		if err := h.redisClient.Set(r.Context(), cacheKey, data, expiration).Err(); err != nil {
			slog.Error("写入考勤汇总缓存失败", "error", err)
		}
	}

	h.successResponse(w, r, "获取考勤汇总成功", summary)
}
