package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/config"
)

// 支持 *sql.DB 和 *sql.Tx 两种执行环境，
// 使得同一份查询逻辑既可以直接运行也可以运行在事务内
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) txCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
}
