package handler

type ContextKey string

var (
	RoleCtxKey       ContextKey = "role"
	SubCtxKey        ContextKey = "sub"
	MyInfoCtx        ContextKey = "myInfo"
	UserInfoCtx      ContextKey = "userInfo"
	ShiftCtxKey      ContextKey = "shift"
	ShiftTemplateCtx ContextKey = "shiftTemplate"
	TimeEntryCtxKey  ContextKey = "timeEntry"
)
