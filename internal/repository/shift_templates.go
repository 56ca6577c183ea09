package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

const shiftTemplateColumns = `id, name, description, day_of_week, start_time, end_time, role, area_id, active, created_at, updated_at, version`

func scanShiftTemplate(row interface{ Scan(dst ...any) error }) (*domain.ShiftTemplate, error) {
	var tmpl domain.ShiftTemplate
	var areaID sql.NullInt64

	dst := []any{
		&tmpl.ID,
		&tmpl.Name,
		&tmpl.Description,
		&tmpl.DayOfWeek,
		&tmpl.StartTime,
		&tmpl.EndTime,
		&tmpl.Role,
		&areaID,
		&tmpl.Active,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
		&tmpl.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if areaID.Valid {
		tmpl.AreaID = &areaID.Int64
	}
	return &tmpl, nil
}

func (r *Repository) GetShiftTemplateByID(ctx context.Context, id int64) (*domain.ShiftTemplate, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + shiftTemplateColumns + ` FROM shift_templates WHERE id = $1`

	tmpl, err := scanShiftTemplate(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrRecordNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

func (r *Repository) GetAllShiftTemplates(ctx context.Context) ([]*domain.ShiftTemplate, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + shiftTemplateColumns + ` FROM shift_templates ORDER BY day_of_week, start_time, id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []*domain.ShiftTemplate{}
	for rows.Next() {
		tmpl, err := scanShiftTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *Repository) CreateShiftTemplate(ctx context.Context, tmpl *domain.ShiftTemplate) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		INSERT INTO shift_templates (name, description, day_of_week, start_time, end_time, role, area_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at, version
	`

	params := []any{
		tmpl.Name,
		tmpl.Description,
		tmpl.DayOfWeek,
		tmpl.StartTime,
		tmpl.EndTime,
		tmpl.Role,
		tmpl.AreaID,
		tmpl.Active,
	}
	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt, &tmpl.Version)
}

func (r *Repository) UpdateShiftTemplate(ctx context.Context, tmpl *domain.ShiftTemplate) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		UPDATE shift_templates
		SET
			name = $1,
			description = $2,
			day_of_week = $3,
			start_time = $4,
			end_time = $5,
			role = $6,
			area_id = $7,
			active = $8,
			updated_at = now(),
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	params := []any{
		tmpl.Name,
		tmpl.Description,
		tmpl.DayOfWeek,
		tmpl.StartTime,
		tmpl.EndTime,
		tmpl.Role,
		tmpl.AreaID,
		tmpl.Active,
		tmpl.ID,
		tmpl.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&tmpl.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scheduling.ErrRecordNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) DeleteShiftTemplate(ctx context.Context, id int64) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `DELETE FROM shift_templates WHERE id = $1`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return scheduling.ErrRecordNotFound
	}
	return nil
}
