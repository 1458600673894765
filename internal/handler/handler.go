package handler

import (
	"attendance-service/internal/auth"
	"attendance-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// CORSOrigins is a comma separated origin list, "*" for any.
	CORSOrigins string
	// LoginRateLimit is the number of login attempts allowed per IP and minute.
	LoginRateLimit int
	// SecureCookies marks the session cookie as HTTPS only.
	SecureCookies bool
}

type Handler struct {
	attendanceService *service.AttendanceService
	professorService  *service.ProfessorService
	departmentService *service.DepartmentService
	adminService      *service.AdminService
	reportService     *service.ReportService
	tokens            *auth.TokenIssuer
	opts              Options
	logger            *logrus.Logger
}

func NewHandler(
	attendanceService *service.AttendanceService,
	professorService *service.ProfessorService,
	departmentService *service.DepartmentService,
	adminService *service.AdminService,
	reportService *service.ReportService,
	tokens *auth.TokenIssuer,
	opts Options,
) *Handler {
	if opts.LoginRateLimit <= 0 {
		opts.LoginRateLimit = 10
	}

	logger := logrus.New()
	logger.SetLevel(logrus.GetLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &Handler{
		attendanceService: attendanceService,
		professorService:  professorService,
		departmentService: departmentService,
		adminService:      adminService,
		reportService:     reportService,
		tokens:            tokens,
		opts:              opts,
		logger:            logger,
	}
}

// NewApp builds the fiber application with every route mounted.
func (h *Handler) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "attendance-service",
		ErrorHandler:          errorHandler(h.logger),
		DisableStartupMessage: true,
	})

	app.Use(recoveryMiddleware())
	app.Use(requestLogger(h.logger))
	app.Use(corsMiddleware(h.opts.CORSOrigins))

	h.Register(app)
	return app
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return message(c, "ok")
	})

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/admin/login", loginRateLimiter(h.opts.LoginRateLimit), h.adminLogin)
	authGroup.Post("/professor/login", loginRateLimiter(h.opts.LoginRateLimit), h.professorLogin)
	authGroup.Post("/logout", h.logout)
	authGroup.Get("/me", session(h.tokens), h.me)

	professor := api.Group("/professor", session(h.tokens), requireRole(auth.RoleProfessor))
	professor.Get("/dashboard", h.professorDashboard)
	professor.Post("/attendance/today", h.registerToday)
	professor.Post("/attendance/retroactive", h.requestRetroactive)
	professor.Get("/attendance", h.professorHistory)
	professor.Get("/profile", h.professorProfile)
	professor.Put("/profile", h.updateProfessorProfile)

	admin := api.Group("/admin", session(h.tokens), requireRole(auth.RoleAdmin))
	admin.Get("/dashboard", h.adminDashboard)
	admin.Get("/requests", h.listRequests)
	admin.Post("/requests/:id/approve", h.approveRequest)
	admin.Post("/requests/:id/reject", h.rejectRequest)

	admin.Get("/professors", h.listProfessors)
	admin.Post("/professors", h.createProfessor)
	admin.Get("/professors/:id", h.getProfessor)
	admin.Put("/professors/:id", h.updateProfessor)
	admin.Delete("/professors/:id", h.deleteProfessor)
	admin.Get("/professors/:id/attendance", h.professorAttendance)

	admin.Get("/departments", h.listDepartments)
	admin.Post("/departments", h.createDepartment)
	admin.Get("/departments/:id", h.getDepartment)
	admin.Put("/departments/:id", h.updateDepartment)
	admin.Delete("/departments/:id", h.deleteDepartment)

	admin.Get("/profile", h.adminProfile)
	admin.Put("/profile", h.updateAdminProfile)

	admin.Get("/reports/attendance", h.attendanceReport)
}
