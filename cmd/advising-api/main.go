package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/campus-advising/advising-api/api/swagger"
	"github.com/campus-advising/advising-api/internal/handler"
	"github.com/campus-advising/advising-api/internal/repository"
	"github.com/campus-advising/advising-api/internal/service"
	"github.com/campus-advising/advising-api/pkg/cache"
	"github.com/campus-advising/advising-api/pkg/config"
	"github.com/campus-advising/advising-api/pkg/database"
	"github.com/campus-advising/advising-api/pkg/jobs"
	"github.com/campus-advising/advising-api/pkg/logger"
)

// @title Campus Advising API
// @version 1.0.0
// @description Course registration requests, prerequisite eligibility, and advising
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	requestRepo := repository.NewRequestRepository(db, metricsSvc)
	noteRepo := repository.NewNoteRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditSvc := service.NewAuditService(auditRepo, jobs.QueueConfig{
		Workers:    cfg.Audit.QueueWorkers,
		BufferSize: cfg.Audit.QueueBuffer,
		MaxRetries: cfg.Audit.MaxRetries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr,
	}, logr)
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	eligibilitySvc := service.NewEligibilityService(courseRepo, ledgerRepo, requestRepo, cacheRepo, cfg.Catalog, metricsSvc, logr)
	catalogSvc := service.NewCatalogService(courseRepo, eligibilitySvc, auditSvc, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, courseRepo, studentRepo, ledgerRepo, eligibilitySvc, auditSvc, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, ledgerRepo, logr)
	noteSvc := service.NewNoteService(noteRepo, studentRepo, courseRepo, validate, logr)
	exportSvc := service.NewExportService(ledgerRepo, requestRepo, logr)

	router := handler.NewRouter(handler.RouterDeps{
		Config:         cfg,
		Logger:         logr,
		Auth:           handler.NewAuthHandler(authSvc),
		Courses:        handler.NewCourseHandler(catalogSvc, eligibilitySvc, studentSvc),
		Requests:       handler.NewRequestHandler(requestSvc, studentSvc),
		Advisor:        handler.NewAdvisorHandler(noteSvc, studentSvc),
		Student:        handler.NewStudentHandler(studentSvc, noteSvc),
		Exports:        handler.NewExportHandler(exportSvc, studentSvc),
		Metrics:        handler.NewMetricsHandler(metricsSvc),
		MetricsService: metricsSvc,
		AuthService:    authSvc,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
