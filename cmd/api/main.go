package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coopcare/admin-api/internal/config"
	appointmentHandler "github.com/coopcare/admin-api/internal/handler/appointment"
	authHandler "github.com/coopcare/admin-api/internal/handler/auth"
	billingHandler "github.com/coopcare/admin-api/internal/handler/billing"
	healthHandler "github.com/coopcare/admin-api/internal/handler/health"
	messageHandler "github.com/coopcare/admin-api/internal/handler/message"
	notificationHandler "github.com/coopcare/admin-api/internal/handler/notification"
	patientHandler "github.com/coopcare/admin-api/internal/handler/patient"
	staffHandler "github.com/coopcare/admin-api/internal/handler/staff"
	taskHandler "github.com/coopcare/admin-api/internal/handler/task"
	"github.com/coopcare/admin-api/internal/middleware"
	"github.com/coopcare/admin-api/internal/model"
	"github.com/coopcare/admin-api/internal/repository/postgres"
	"github.com/coopcare/admin-api/internal/router"
	appointmentService "github.com/coopcare/admin-api/internal/service/appointment"
	authService "github.com/coopcare/admin-api/internal/service/auth"
	billingService "github.com/coopcare/admin-api/internal/service/billing"
	messageService "github.com/coopcare/admin-api/internal/service/message"
	notificationService "github.com/coopcare/admin-api/internal/service/notification"
	patientService "github.com/coopcare/admin-api/internal/service/patient"
	scheduleService "github.com/coopcare/admin-api/internal/service/schedule"
	staffService "github.com/coopcare/admin-api/internal/service/staff"
	taskService "github.com/coopcare/admin-api/internal/service/task"
	"github.com/coopcare/admin-api/pkg/auth"
	"github.com/coopcare/admin-api/pkg/logger"
	"github.com/coopcare/admin-api/pkg/metrics"
	"github.com/coopcare/admin-api/pkg/security"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	model.RegisterValidators()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	expenseRepo := postgres.NewExpenseRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Cross-cutting services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.RefreshSecret,
		cfg.JWT.ExpiryHours, cfg.JWT.RefreshExpiryHours)
	hasher := security.NewBcryptHasher(0)
	m := metrics.NewMetrics("coopcare")

	// Domain services
	notifSvc := notificationService.NewService(notificationRepo, log)
	patientSvc := patientService.NewService(patientRepo)
	staffSvc := staffService.NewService(staffRepo, hasher)
	scheduleSvc := scheduleService.NewService(scheduleRepo, appointmentRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, staffRepo, scheduleSvc, notifSvc, m)
	billingSvc := billingService.NewService(invoiceRepo, expenseRepo, patientRepo, notifSvc)
	messageSvc := messageService.NewService(messageRepo, staffRepo, notifSvc)
	taskSvc := taskService.NewService(taskRepo, staffRepo, notifSvc)
	authSvc := authService.NewService(staffRepo, jwtSvc, hasher)

	// HTTP wiring
	authMW := middleware.NewAuthMiddleware(jwtSvc)
	r := router.NewRouter(cfg, log, m, authMW,
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		[]router.Handler{
			patientHandler.NewHandler(patientSvc),
			staffHandler.NewHandler(staffSvc, scheduleSvc,
				authMW.RequireRole(model.StaffRoleAdministrator, model.StaffRoleCoordinator)),
			appointmentHandler.NewHandler(appointmentSvc),
			billingHandler.NewHandler(billingSvc),
			messageHandler.NewHandler(messageSvc),
			taskHandler.NewHandler(taskSvc),
			notificationHandler.NewHandler(notifSvc),
		},
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "forced shutdown")
	}
	log.Info("server stopped")
}
