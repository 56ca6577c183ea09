package seed

import (
	"context"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/utils"
)

// 本地开发用的演示数据：几个固定的助理、一套常用的班次模板，
// 以及过去一周已发布的班次和对应的打卡记录，方便直接查看考勤报表
var demoAssistants = []struct {
	FullName string
	Role     domain.Role
}{
	{"王小明", domain.RoleNormalAssistant},
	{"李华", domain.RoleNormalAssistant},
	{"张伟", domain.RoleSeniorAssistant},
	{"陈静", domain.RoleBlackCore},
}

var demoTemplates = []domain.ShiftTemplate{
	{Name: "工作日早班", DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", Role: "前台", Active: true},
	{Name: "工作日午班", DayOfWeek: 1, StartTime: "13:30", EndTime: "18:00", Role: "前台", Active: true},
	{Name: "晚间值班", DayOfWeek: 5, StartTime: "19:00", EndTime: "22:00", Role: "值班", Active: true},
	{Name: "周末通宵", DayOfWeek: 6, StartTime: "22:00", EndTime: "02:00", Role: "值班", Active: true},
}

func SeedDemoData(repo *repository.Repository, password string, emailDomain string) {
	ctx := context.Background()

	// 插入演示助理
	users := make([]*domain.User, 0, len(demoAssistants))
	for _, a := range demoAssistants {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			slog.Error("无法生成演示助理", "error", err)
			continue
		}
		user.FullName = a.FullName
		user.Role = a.Role

		if err := repo.CreateUser(ctx, user); err != nil {
			slog.Error("无法插入演示助理", "fullName", a.FullName, "error", err)
			continue
		}
		users = append(users, user)
	}
	slog.Info("插入演示助理成功", "count", len(users))

	// 插入演示班次模板
	templateCount := 0
	for i := range demoTemplates {
		tmpl := demoTemplates[i]
		if err := repo.CreateShiftTemplate(ctx, &tmpl); err != nil {
			slog.Error("无法插入演示班次模板", "name", tmpl.Name, "error", err)
			continue
		}
		templateCount++
	}
	slog.Info("插入演示班次模板成功", "count", templateCount)

	if len(users) == 0 {
		return
	}

	// 为过去一周生成已发布的班次和对应的打卡记录
	now := time.Now()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -7)

	shiftCount := 0
	entryCount := 0
	for _, user := range users {
		for day := 0; day < 7; day++ {
			// 周日休息
			date := weekStart.AddDate(0, 0, day)
			if date.Weekday() == time.Sunday {
				continue
			}

			start := date.Add(9 * time.Hour)
			shift := &domain.Shift{
				Owner:     user.Username,
				StartTime: start,
				EndTime:   start.Add(8 * time.Hour),
				Status:    domain.ShiftStatusPublished,
				Role:      "前台",
				CreatedBy: "seed",
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateShift(ctx, shift); err != nil {
				slog.Error("无法插入演示班次", "owner", user.Username, "error", err)
				continue
			}
			shiftCount++

			entry := utils.GenerateRandomTimeEntryForShift(shift)
			entry.CreatedAt = now
			entry.UpdatedAt = now
			if err := repo.CreateTimeEntry(ctx, entry); err != nil {
				slog.Error("无法插入演示打卡记录", "owner", user.Username, "error", err)
				continue
			}
			entryCount++
		}
	}

	slog.Info("插入演示班次和打卡记录成功", "shifts", shiftCount, "entries", entryCount)
}
