package repository

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

const shiftColumns = `id, owner_username, start_time, end_time, status, role, area_id, template_id, note, created_by, created_at, updated_at, version`

func scanShift(row interface{ Scan(dst ...any) error }) (*domain.Shift, error) {
	var shift domain.Shift
	var areaID sql.NullInt64
	var templateID sql.NullInt64

	dst := []any{
		&shift.ID,
		&shift.Owner,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Status,
		&shift.Role,
		&areaID,
		&templateID,
		&shift.Note,
		&shift.CreatedBy,
		&shift.CreatedAt,
		&shift.UpdatedAt,
		&shift.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if areaID.Valid {
		shift.AreaID = &areaID.Int64
	}
	if templateID.Valid {
		shift.TemplateID = &templateID.Int64
	}
	return &shift, nil
}

func getShiftByID(ctx context.Context, q dbtx, id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	shift, err := scanShift(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrRecordNotFound
		}
		return nil, err
	}
	return shift, nil
}

func getOwnerShiftsInWindow(ctx context.Context, q dbtx, owner string, from, to time.Time) ([]*domain.Shift, error) {
	// 区间为左闭右开，和 [from, to) 相交即命中
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE owner_username = $1 AND status <> $2 AND start_time < $3 AND end_time > $4
		ORDER BY start_time, id
	`

	rows, err := q.QueryContext(ctx, query, owner, domain.ShiftStatusCancelled, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShifts(rows)
}

func createShift(ctx context.Context, q dbtx, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (owner_username, start_time, end_time, status, role, area_id, template_id, note, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version
	`

	params := []any{
		shift.Owner,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		shift.Role,
		shift.AreaID,
		shift.TemplateID,
		shift.Note,
		shift.CreatedBy,
		shift.CreatedAt,
		shift.UpdatedAt,
	}
	return q.QueryRowContext(ctx, query, params...).Scan(&shift.ID, &shift.Version)
}

func updateShift(ctx context.Context, q dbtx, shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			start_time = $1,
			end_time = $2,
			status = $3,
			role = $4,
			area_id = $5,
			note = $6,
			updated_at = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	params := []any{
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		shift.Role,
		shift.AreaID,
		shift.Note,
		shift.UpdatedAt,
		shift.ID,
		shift.Version,
	}
	if err := q.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 记录不存在或版本已被其他请求更新
			return scheduling.ErrRecordNotFound
		}
		return err
	}
	return nil
}

func updateShiftsStatus(ctx context.Context, q dbtx, ids []int64, from, to domain.ShiftStatus) (int, error) {
	query := `
		UPDATE shifts
		SET status = $1, updated_at = now(), version = version + 1
		WHERE id = ANY($2) AND status = $3
	`

	result, err := q.ExecContext(ctx, query, to, ids, from)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func listShifts(ctx context.Context, q dbtx, filter scheduling.ShiftFilter) ([]*domain.Shift, error) {
	query, params := buildShiftFilterQuery(filter)
	query += ` ORDER BY start_time, id`

	rows, err := q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShifts(rows)
}

func buildShiftFilterQuery(filter scheduling.ShiftFilter) (string, []any) {
	conditions := []string{}
	params := []any{}

	if !filter.To.IsZero() {
		params = append(params, filter.To)
		conditions = append(conditions, fmt.Sprintf("start_time < $%d", len(params)))
	}
	if !filter.From.IsZero() {
		params = append(params, filter.From)
		conditions = append(conditions, fmt.Sprintf("end_time > $%d", len(params)))
	}
	if filter.Owner != "" {
		params = append(params, filter.Owner)
		conditions = append(conditions, fmt.Sprintf("owner_username = $%d", len(params)))
	}
	if filter.Status != "" {
		params = append(params, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(params)))
	}
	if filter.AreaID != nil {
		params = append(params, *filter.AreaID)
		conditions = append(conditions, fmt.Sprintf("area_id = $%d", len(params)))
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	return query, params
}

func collectShifts(rows *sql.Rows) ([]*domain.Shift, error) {
	shifts := []*domain.Shift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shifts, nil
}

/**********************************************
 * scheduling.ShiftStore 的实现
 **********************************************/

func (r *Repository) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()
	return getShiftByID(ctx, r.dbpool, id)
}

func (r *Repository) GetOwnerShiftsInWindow(ctx context.Context, owner string, from, to time.Time) ([]*domain.Shift, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()
	return getOwnerShiftsInWindow(ctx, r.dbpool, owner, from, to)
}

func (r *Repository) CreateShift(ctx context.Context, shift *domain.Shift) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()
	return createShift(ctx, r.dbpool, shift)
}

func (r *Repository) UpdateShift(ctx context.Context, shift *domain.Shift) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()
	return updateShift(ctx, r.dbpool, shift)
}

func (r *Repository) UpdateShiftsStatus(ctx context.Context, ids []int64, from, to domain.ShiftStatus) (int, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()
	return updateShiftsStatus(ctx, r.dbpool, ids, from, to)
}

func (r *Repository) ListShifts(ctx context.Context, filter scheduling.ShiftFilter) ([]*domain.Shift, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()
	return listShifts(ctx, r.dbpool, filter)
}

// 在一个数据库事务内以 owner 为粒度加咨询锁后执行 fn。
// 锁在事务结束时自动释放，保证同一 owner 的检查-写入序列不会交错。
func (r *Repository) InOwnerTx(ctx context.Context, owner string, fn func(tx scheduling.ShiftStore) error) error {
	ctx, cancel := r.txCtx(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, owner); err != nil {
		return err
	}

	if err := fn(&txShiftStore{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// 事务作用域内的 ShiftStore，查询超时由外层事务上下文控制
type txShiftStore struct {
	tx *sql.Tx
}

func (s *txShiftStore) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	return getShiftByID(ctx, s.tx, id)
}

func (s *txShiftStore) GetOwnerShiftsInWindow(ctx context.Context, owner string, from, to time.Time) ([]*domain.Shift, error) {
	return getOwnerShiftsInWindow(ctx, s.tx, owner, from, to)
}

func (s *txShiftStore) CreateShift(ctx context.Context, shift *domain.Shift) error {
	return createShift(ctx, s.tx, shift)
}

func (s *txShiftStore) UpdateShift(ctx context.Context, shift *domain.Shift) error {
	return updateShift(ctx, s.tx, shift)
}

func (s *txShiftStore) UpdateShiftsStatus(ctx context.Context, ids []int64, from, to domain.ShiftStatus) (int, error) {
	return updateShiftsStatus(ctx, s.tx, ids, from, to)
}

func (s *txShiftStore) ListShifts(ctx context.Context, filter scheduling.ShiftFilter) ([]*domain.Shift, error) {
	return listShifts(ctx, s.tx, filter)
}

// 已经在 owner 事务内，直接执行
func (s *txShiftStore) InOwnerTx(ctx context.Context, owner string, fn func(tx scheduling.ShiftStore) error) error {
	return fn(s)
}

/**********************************************
 * 供 handler 使用的查询
 **********************************************/

// 基于 (start_time, id) 的游标分页查询，返回下一页游标，空字符串表示没有更多数据
func (r *Repository) ListShiftsPage(ctx context.Context, filter scheduling.ShiftFilter, cursor string, limit int) ([]*domain.Shift, string, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query, params := buildShiftFilterQuery(filter)

	if cursor != "" {
		cursorStart, cursorID, err := decodeShiftCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		prefix := " WHERE "
		if len(params) > 0 {
			prefix = " AND "
		}
		params = append(params, cursorStart)
		startParam := len(params)
		params = append(params, cursorID)
		query += fmt.Sprintf("%s(start_time, id) > ($%d, $%d)", prefix, startParam, len(params))
	}

	params = append(params, limit+1)
	query += fmt.Sprintf(" ORDER BY start_time, id LIMIT $%d", len(params))

	rows, err := r.dbpool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	shifts, err := collectShifts(rows)
	if err != nil {
		return nil, "", err
	}

	// 多取一条用于判断是否还有下一页
	nextCursor := ""
	if len(shifts) > limit {
		shifts = shifts[:limit]
		last := shifts[len(shifts)-1]
		nextCursor = encodeShiftCursor(last.StartTime, last.ID)
	}

	return shifts, nextCursor, nil
}

func (r *Repository) GetShiftsByIDs(ctx context.Context, ids []int64) ([]*domain.Shift, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = ANY($1) ORDER BY start_time, id`

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShifts(rows)
}

func encodeShiftCursor(start time.Time, id int64) string {
	raw := strconv.FormatInt(start.UnixNano(), 10) + "|" + strconv.FormatInt(id, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeShiftCursor(cursor string) (time.Time, int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("无效的分页游标")
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("无效的分页游标")
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("无效的分页游标")
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("无效的分页游标")
	}
	return time.Unix(0, nanos), id, nil
}
