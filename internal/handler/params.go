package handler

import (
	"errors"
	"net/http"
	"time"
)

const (
	// 不带时间范围查询自己的班次时，默认看未来一周
	defaultMyShiftsRange = 7 * 24 * time.Hour
	// 考勤报表不带时间范围时，默认看过去一个月
	defaultAttendanceRange = 30 * 24 * time.Hour
)

// 从 query 中解析 from/to（RFC3339）时间范围。
// from 缺省为当前时间减去 fallback（fallback 为负时则为当前时间），to 缺省为 from 加上 fallback 的绝对值。
func (h *Handler) parseTimeRange(r *http.Request, fallback time.Duration) (time.Time, time.Time, error) {
	var (
		from time.Time
		to   time.Time
		err  error
	)

	now := time.Now()

	if fromParam := r.URL.Query().Get("from"); fromParam != "" {
		from, err = time.Parse(time.RFC3339, fromParam)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("起始时间格式无效")
		}
	}
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		to, err = time.Parse(time.RFC3339, toParam)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("结束时间格式无效")
		}
	}

	if from.IsZero() && to.IsZero() {
		from = now
		to = now.Add(fallback)
		if fallback < 0 {
			from, to = to, from
		}
		return from, to, nil
	}
	if from.IsZero() {
		from = to.Add(-absDuration(fallback))
	}
	if to.IsZero() {
		to = from.Add(absDuration(fallback))
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("结束时间必须晚于起始时间")
	}

	return from, to, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
