package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/handler"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("加载配置失败", "error", err)
		return
	}

	/**********************************************
	 * 数据库与 repository
	 **********************************************/
	dbpool, err := openDatabase(cfg)
	if err != nil {
		logger.Error("连接数据库失败", "error", err)
		return
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)

	if err := ensureInitialAdmin(repo, cfg); err != nil {
		logger.Error("创建初始管理员失败", "error", err)
		return
	}

	/**********************************************
	 * redis 与 rabbitmq
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	mqConn, mailCh, err := setupMailQueue(cfg)
	if err != nil {
		logger.Error("初始化邮件队列失败", "error", err)
		return
	}
	defer mqConn.Close()
	defer mailCh.Close()

	/**********************************************
	 * HTTP 服务
	 **********************************************/
	h, err := handler.NewHandler(cfg, repo, mailCh, rdb)
	if err != nil {
		logger.Error("创建 handler 失败", "error", err)
		return
	}
	h.RegisterRoutes()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("服务器启动", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("服务器启动失败", "error", err)
		}
	}()

	<-quit
	logger.Info("收到退出信号，正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", "error", err)
		return
	}
	logger.Info("服务器已退出")
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	// sql.Open 不会立即建立连接，这里 ping 一下确认数据库可用
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}

	return dbpool, nil
}

// 初始管理员已存在时（username 唯一约束冲突）静默跳过
func ensureInitialAdmin(repo *repository.Repository, cfg *config.Config) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	initialAdmin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleBlackCore,
		IsActive:     true,
	}

	err = repo.CreateUser(context.Background(), initialAdmin)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key" {
		return nil
	}
	return err
}

func setupMailQueue(cfg *config.Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	if _, err := ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}
