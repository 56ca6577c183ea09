package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

const timeEntryColumns = `id, owner_username, clock_in, clock_out, status, shift_id, note, edited_by, created_at, updated_at, version`

func scanTimeEntry(row interface{ Scan(dst ...any) error }) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	var clockOut sql.NullTime
	var shiftID sql.NullInt64

	dst := []any{
		&entry.ID,
		&entry.Owner,
		&entry.ClockIn,
		&clockOut,
		&entry.Status,
		&shiftID,
		&entry.Note,
		&entry.EditedBy,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if clockOut.Valid {
		entry.ClockOut = &clockOut.Time
	}
	if shiftID.Valid {
		entry.ShiftID = &shiftID.Int64
	}
	return &entry, nil
}

func (r *Repository) GetTimeEntryByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1`

	entry, err := scanTimeEntry(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrRecordNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *Repository) GetActiveTimeEntryByOwner(ctx context.Context, owner string) (*domain.TimeEntry, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE owner_username = $1 AND status = $2
		ORDER BY clock_in DESC
		LIMIT 1
	`

	entry, err := scanTimeEntry(r.dbpool.QueryRowContext(ctx, query, owner, domain.TimeEntryStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrRecordNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *Repository) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		INSERT INTO time_entries (owner_username, clock_in, clock_out, status, shift_id, note, edited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version
	`

	params := []any{
		entry.Owner,
		entry.ClockIn,
		entry.ClockOut,
		entry.Status,
		entry.ShiftID,
		entry.Note,
		entry.EditedBy,
		entry.CreatedAt,
		entry.UpdatedAt,
	}
	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&entry.ID, &entry.Version)
}

func (r *Repository) UpdateTimeEntry(ctx context.Context, entry *domain.TimeEntry) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		UPDATE time_entries
		SET
			clock_in = $1,
			clock_out = $2,
			status = $3,
			shift_id = $4,
			note = $5,
			edited_by = $6,
			updated_at = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	params := []any{
		entry.ClockIn,
		entry.ClockOut,
		entry.Status,
		entry.ShiftID,
		entry.Note,
		entry.EditedBy,
		entry.UpdatedAt,
		entry.ID,
		entry.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&entry.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scheduling.ErrRecordNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) DeleteTimeEntry(ctx context.Context, id int64) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `DELETE FROM time_entries WHERE id = $1`

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

func (r *Repository) ListTimeEntries(ctx context.Context, filter scheduling.TimeEntryFilter) ([]*domain.TimeEntry, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	conditions := []string{}
	params := []any{}

	if !filter.From.IsZero() {
		params = append(params, filter.From)
		conditions = append(conditions, fmt.Sprintf("clock_in >= $%d", len(params)))
		params = append(params, filter.To)
		conditions = append(conditions, fmt.Sprintf("clock_in < $%d", len(params)))
	}
	if filter.Owner != "" {
		params = append(params, filter.Owner)
		conditions = append(conditions, fmt.Sprintf("owner_username = $%d", len(params)))
	}
	if len(filter.ShiftIDs) > 0 {
		params = append(params, filter.ShiftIDs)
		conditions = append(conditions, fmt.Sprintf("shift_id = ANY($%d)", len(params)))
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY clock_in, id`

	rows, err := r.dbpool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.TimeEntry{}
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
