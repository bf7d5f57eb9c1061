package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-retention-api/api/swagger"
	"github.com/noah-isme/sma-retention-api/internal/handler"
	"github.com/noah-isme/sma-retention-api/internal/middleware"
	"github.com/noah-isme/sma-retention-api/internal/repository"
	"github.com/noah-isme/sma-retention-api/internal/service"
	"github.com/noah-isme/sma-retention-api/pkg/cache"
	"github.com/noah-isme/sma-retention-api/pkg/config"
	"github.com/noah-isme/sma-retention-api/pkg/database"
	"github.com/noah-isme/sma-retention-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-retention-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-retention-api/pkg/middleware/requestid"
)

// @title SMA Retention API
// @version 1.0.0
// @description Student dropout-risk tracking and intervention platform
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Analytics.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, analytics cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	counselorRepo := repository.NewCounselorRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	counselingRepo := repository.NewCounselingRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	predictor := service.NewProcessPredictor(cfg.Risk.PredictorCommand, cfg.Risk.PredictorArgs)
	mlSvc := service.NewMLService(predictor, cfg.Risk.PredictorTimeout, cfg.Risk.MLRefreshTTL, metrics, logr)

	riskSvc := service.NewRiskService(studentRepo, attendanceRepo, assessmentRepo, alertRepo, mlSvc, metrics, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metrics, logr)
	recalcSvc := service.NewRecalcService(riskSvc, studentRepo, analyticsSvc, cfg.Risk.RecalcWorkers, cfg.Risk.RecalcBuffer, logr)
	recalcSvc.Start(ctx)
	defer recalcSvc.Stop()

	classifier := service.NewKeywordClassifier()
	assignmentSvc := service.NewAssignmentService(studentRepo, mentorRepo, counselorRepo, classifier, logr)
	interventionSvc := service.NewInterventionService(interventionRepo, studentRepo, alertRepo, validate, logr)
	alertSvc := service.NewAlertService(alertRepo, logr)
	counselingSvc := service.NewCounselingService(counselingRepo, riskSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, attendanceRepo, assessmentRepo, riskSvc, validate, logr)
	staffSvc := service.NewStaffService(mentorRepo, counselorRepo, validate, logr)
	reportSvc := service.NewReportService(studentRepo, logr)

	if cfg.SLA.SweepEnabled {
		go runSLASweeper(ctx, interventionSvc, cfg.SLA.SweepInterval, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	registerRoutes(api, routeDeps{
		students:      handler.NewStudentHandler(studentSvc),
		risk:          handler.NewRiskHandler(riskSvc, recalcSvc),
		assignments:   handler.NewAssignmentHandler(assignmentSvc),
		interventions: handler.NewInterventionHandler(interventionSvc),
		alerts:        handler.NewAlertHandler(alertSvc),
		counseling:    handler.NewCounselingHandler(counselingSvc),
		staff:         handler.NewStaffHandler(staffSvc),
		analytics:     handler.NewAnalyticsHandler(analyticsSvc),
		reports:       handler.NewReportHandler(reportSvc),
		reportsOn:     cfg.Reports.Enabled,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type routeDeps struct {
	students      *handler.StudentHandler
	risk          *handler.RiskHandler
	assignments   *handler.AssignmentHandler
	interventions *handler.InterventionHandler
	alerts        *handler.AlertHandler
	counseling    *handler.CounselingHandler
	staff         *handler.StaffHandler
	analytics     *handler.AnalyticsHandler
	reports       *handler.ReportHandler
	reportsOn     bool
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	students := api.Group("/students")
	{
		students.GET("", deps.students.List)
		students.POST("", deps.students.Create)
		students.GET("/:id", deps.students.Get)
		students.PUT("/:id", deps.students.Update)
		students.GET("/:id/attendance", deps.students.ListAttendance)
		students.POST("/:id/attendance", deps.students.RecordAttendance)
		students.GET("/:id/assessments", deps.students.ListAssessments)
		students.POST("/:id/assessments", deps.students.RecordAssessment)
		students.GET("/:id/risk", deps.risk.Profile)
		students.POST("/:id/risk/refresh", deps.risk.Refresh)
		students.POST("/:id/mentor", deps.assignments.AssignMentor)
		students.POST("/:id/mentor/auto-assign", deps.assignments.AutoAssign)
		students.GET("/:id/mentor/suggestions", deps.assignments.Suggestions)
		students.GET("/:id/mentor/history", deps.assignments.History)
		students.POST("/:id/counselor", deps.assignments.AssignCounselor)
		students.GET("/:id/counseling", deps.counseling.ListByStudent)
		students.GET("/:id/counseling/improvement", deps.counseling.Improvement)
	}

	api.POST("/risk/recalculate", deps.risk.Recalculate)

	interventions := api.Group("/interventions")
	{
		interventions.GET("", deps.interventions.List)
		interventions.POST("", deps.interventions.Create)
		interventions.GET("/sla-violations", deps.interventions.Violations)
		interventions.POST("/auto-escalate", deps.interventions.AutoEscalate)
		interventions.GET("/:id", deps.interventions.Get)
		interventions.PATCH("/:id/status", deps.interventions.UpdateStatus)
		interventions.POST("/:id/escalate", deps.interventions.Escalate)
	}

	api.GET("/alerts", deps.alerts.ListUnread)
	api.POST("/alerts/:id/read", deps.alerts.MarkRead)

	api.POST("/counseling", deps.counseling.Create)
	api.POST("/counseling/:id/complete", deps.counseling.Complete)

	api.GET("/mentors", deps.staff.ListMentors)
	api.POST("/mentors", deps.staff.CreateMentor)
	api.GET("/counselors", deps.staff.ListCounselors)
	api.POST("/counselors", deps.staff.CreateCounselor)

	analytics := api.Group("/analytics")
	{
		analytics.GET("/risk-distribution", deps.analytics.RiskDistribution)
		analytics.GET("/departments", deps.analytics.Departments)
		analytics.GET("/system", deps.analytics.System)
	}

	if deps.reportsOn {
		api.GET("/reports/at-risk", deps.reports.AtRisk)
	}
}

// runSLASweeper periodically escalates overdue intervention tasks.
func runSLASweeper(ctx context.Context, interventions *service.InterventionService, interval time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			escalated, err := interventions.AutoEscalateOverdueTasks(ctx)
			if err != nil {
				logr.Sugar().Errorw("sla sweep failed", "error", err)
				continue
			}
			if len(escalated) > 0 {
				logr.Sugar().Infow("sla sweep escalated tasks", "count", len(escalated))
			}
		}
	}
}
