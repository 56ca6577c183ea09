package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

const userColumns = `id, username, password_hash, full_name, email, role, is_active, created_at, version`

func scanUser(row interface{ Scan(dst ...any) error }) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrRecordNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.dbpool.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrRecordNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUsersByUsernames(ctx context.Context, usernames []string) ([]*domain.User, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = ANY($1)`

	rows, err := r.dbpool.QueryContext(ctx, query, usernames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}

func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET
			password_hash = $1,
			email = $2,
			role = $3,
			is_active = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	args := []any{user.PasswordHash, user.Email, user.Role, user.IsActive, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scheduling.ErrRecordNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	query := `DELETE FROM users WHERE id = $1`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
