package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机班次模板, 3: 为所有在职助理插入下周的随机班次, 4: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(context.Background(), user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的班次模板数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				tmpl := utils.GenerateRandomShiftTemplate()
				if err := repo.CreateShiftTemplate(context.Background(), tmpl); err != nil {
					slog.Error("无法插入班次模板", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入班次模板成功", slog.Int("count", n-cnt))
		}
	case 3:
		// 先获取所有在职助理
		users, err := repo.GetAllUsers(context.Background())
		if err != nil {
			slog.Error("无法获取所有助理", slog.String("error", err.Error()))
			return
		}

		now := time.Now()
		weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 7-int(now.Weekday()))

		cnt := 0
		for _, user := range users {
			if !user.IsActive {
				continue
			}

			for i := 0; i < n; i++ {
				shift := utils.GenerateRandomShift(user.Username, weekStart, "seed")
				shift.CreatedAt = now
				shift.UpdatedAt = now
				if err := repo.CreateShift(context.Background(), shift); err != nil {
					slog.Error("无法插入班次", slog.String("owner", user.Username), slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}

		slog.Info("插入班次成功", slog.Int("count", cnt))
	case 4:
		seed.SeedDemoData(repo, cfg.Seed.User.Password, cfg.Email.UserDomain)
	default:
		slog.Error("指定的操作非法")
	}
}
