package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleNormalAssistant,
	domain.RoleSeniorAssistant,
	domain.RoleBlackCore,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
		IsActive:     true,
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

var shiftRoles = []string{"前台", "维修", "值班"}

func GenerateRandomShiftRole() string {
	return shiftRoles[rand.Intn(len(shiftRoles))]
}

// 随机生成一个班次模板，开始时间取整点或半点，时长 1~8 小时，偶尔跨午夜
func GenerateRandomShiftTemplate() *domain.ShiftTemplate {
	startHour := rand.Intn(24)
	startMinute := rand.Intn(2) * 30
	durationMinutes := (rand.Intn(15) + 2) * 30 // 1~8 小时

	endTotal := (startHour*60 + startMinute + durationMinutes) % (24 * 60)

	return &domain.ShiftTemplate{
		Name:        "班次模板" + GenerateRandomID(3, 3),
		Description: "班次模板描述" + GenerateRandomID(20, 10),
		DayOfWeek:   int32(rand.Intn(7)),
		StartTime:   fmt.Sprintf("%02d:%02d", startHour, startMinute),
		EndTime:     fmt.Sprintf("%02d:%02d", endTotal/60, endTotal%60),
		Role:        GenerateRandomShiftRole(),
		Active:      true,
	}
}

// 在 [weekStart, weekStart+7d) 内为 owner 随机生成一个草稿班次，时长 2~6 小时
func GenerateRandomShift(owner string, weekStart time.Time, createdBy string) *domain.Shift {
	day := rand.Intn(7)
	startHour := rand.Intn(14) + 8 // 8:00 ~ 21:00 开始
	duration := time.Duration(rand.Intn(5)+2) * time.Hour

	start := weekStart.AddDate(0, 0, day).Add(time.Duration(startHour) * time.Hour)

	return &domain.Shift{
		Owner:     owner,
		StartTime: start,
		EndTime:   start.Add(duration),
		Status:    domain.ShiftStatusDraft,
		Role:      GenerateRandomShiftRole(),
		CreatedBy: createdBy,
	}
}

// 为一个班次随机生成一条已完成的打卡记录，上下班时间在计划时间附近 ±20 分钟内浮动
func GenerateRandomTimeEntryForShift(shift *domain.Shift) *domain.TimeEntry {
	clockIn := shift.StartTime.Add(time.Duration(rand.Intn(41)-20) * time.Minute)
	clockOut := shift.EndTime.Add(time.Duration(rand.Intn(41)-20) * time.Minute)
	if !clockOut.After(clockIn) {
		clockOut = clockIn.Add(30 * time.Minute)
	}

	return &domain.TimeEntry{
		Owner:    shift.Owner,
		ClockIn:  clockIn,
		ClockOut: &clockOut,
		Status:   domain.TimeEntryStatusCompleted,
		ShiftID:  &shift.ID,
	}
}
