package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

// 班次发布后按 owner 聚合的通知
type ShiftPublishedMailData struct {
	FullName   string `json:"fullName"`
	ShiftCount int    `json:"shiftCount"`
	FirstStart string `json:"firstStart"` // 已格式化的本地时间字符串
	LastEnd    string `json:"lastEnd"`
}
