package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance-service/internal/auth"
	"attendance-service/internal/config"
	"attendance-service/internal/database"
	"attendance-service/internal/handler"
	"attendance-service/internal/repository"
	"attendance-service/internal/service"
	"attendance-service/pkg/civildate"
	"attendance-service/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetConfig()
	logrus.SetLevel(cfg.LogLevel)
	logrus.Info("Config initialized...")

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logrus.StandardLogger())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Order matters: each table references the previous ones.
	departmentRepo, err := repository.NewGormDepartmentRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create department repository")
	}

	professorRepo, err := repository.NewGormProfessorRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create professor repository")
	}

	adminRepo, err := repository.NewGormAdminRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create admin repository")
	}

	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create attendance repository")
	}

	calendar, err := civildate.NewCalendar(cfg.Timezone, civildate.SystemClock{})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load timezone")
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.NotificationsEnabled() {
		client, err := telegram.NewClient(cfg.TelegramToken)
		if err != nil {
			logrus.WithError(err).Warn("Telegram notifications disabled")
		} else {
			logrus.Infof("Authorized on account %s", client.UserName)
			notifier = service.NewChatNotifier(client, cfg.TelegramAdminChatID)
		}
	}

	attendanceService := service.NewAttendanceService(
		attendanceRepo,
		professorRepo,
		departmentRepo,
		calendar,
		notifier,
		service.AttendanceOptions{
			AllowRedecide: cfg.AllowRedecide,
			PageSize:      cfg.PageSize,
		},
	)
	professorService := service.NewProfessorService(professorRepo, departmentRepo, cfg.PageSize)
	departmentService := service.NewDepartmentService(departmentRepo, cfg.PageSize)
	adminService := service.NewAdminService(adminRepo)
	reportService := service.NewReportService(professorService, attendanceService, calendar)

	if cfg.AllowRedecide {
		logrus.Warn("ALLOW_REDECIDE is on: decided requests can be overwritten")
	}

	if err := adminService.InitializeAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.WithError(err).Warn("Failed to initialize admin")
	}

	httpHandler := handler.NewHandler(
		attendanceService,
		professorService,
		departmentService,
		adminService,
		reportService,
		auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL),
		handler.Options{
			CORSOrigins:    cfg.CORSOrigins,
			LoginRateLimit: cfg.LoginRateLimit,
			SecureCookies:  cfg.SecureCookies,
		},
	)
	app := httpHandler.NewApp()

	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logrus.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logrus.Info("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Warn("HTTP server did not shut down cleanly")
	}

	if err := database.Close(db); err != nil {
		logrus.WithError(err).Warn("Error closing database")
	}

	logrus.Info("Server stopped gracefully")
}
