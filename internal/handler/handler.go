package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/attendance-manager/backend/internal/scheduling"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	lifecycle      *scheduling.ShiftLifecycleManager
	templateEngine *scheduling.TemplateEngine
	recorder       *scheduling.TimeEntryRecorder
	reconciliation *scheduling.ReconciliationEngine
	aggregator     *scheduling.AttendanceAggregator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	clock := scheduling.ClockFunc(time.Now)
	reconciliation := scheduling.NewReconciliationEngine(repo, repo)

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		lifecycle:      scheduling.NewShiftLifecycleManager(repo, clock),
		templateEngine: scheduling.NewTemplateEngine(repo, repo, clock),
		recorder:       scheduling.NewTimeEntryRecorder(repo, repo, clock),
		reconciliation: reconciliation,
		aggregator: scheduling.NewAttendanceAggregator(
			reconciliation,
			repo,
			cfg.Attendance.StandardShiftHours,
			cfg.Attendance.LateThresholdMinutes,
		),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.With(h.myInfo).Get("/my-shifts", h.GetMyShifts)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetShifts)
			r.With(h.myInfo, h.RequiredRole([]domain.Role{domain.RoleSeniorAssistant, domain.RoleBlackCore})).Post("/", h.CreateShift)
			r.With(h.RequiredRole([]domain.Role{domain.RoleSeniorAssistant, domain.RoleBlackCore})).Post("/publish", h.PublishShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleSeniorAssistant, domain.RoleBlackCore}))
				r.Use(h.shift)
				r.Patch("/", h.EditShift)
				r.Post("/cancel", h.CancelShift)
			})
		})

		r.Route("/shift-templates", func(r chi.Router) {
			r.Get("/", h.GetAllShiftTemplates)
			r.With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Post("/", h.CreateShiftTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTemplate)
				r.Get("/", h.GetShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Patch("/", h.UpdateShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Delete("/", h.DeleteShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Post("/toggle-active", h.ToggleShiftTemplateActive)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSeniorAssistant, domain.RoleBlackCore})).Post("/generate", h.GenerateShiftsFromTemplate)
			})
		})

		r.Route("/time-entries", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.myInfo)
				r.Use(h.preventLeavedAssistant)
				r.Post("/clock-in", h.ClockIn)
				r.With(h.timeEntry).Post("/{id}/clock-out", h.ClockOut)
				r.Get("/active", h.GetMyActiveTimeEntry)
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleSeniorAssistant, domain.RoleBlackCore}))
				r.Use(h.myInfo)
				r.Use(h.timeEntry)
				r.Patch("/", h.EditTimeEntry)
				r.Delete("/", h.DeleteTimeEntry)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleSeniorAssistant, domain.RoleBlackCore}))
			r.Get("/plan-vs-actual", h.PlanVsActual)
			r.Get("/summary", h.GetAttendanceSummary)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 所有助理应该都有权限获取其他人的个人信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleBlackCore})).Delete("/", h.DeleteUser)
			})
		})
	})
}
