package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/participation-sync-api/internal/handler"
	"github.com/noah-isme/participation-sync-api/internal/lms"
	appMiddleware "github.com/noah-isme/participation-sync-api/internal/middleware"
	"github.com/noah-isme/participation-sync-api/internal/models"
	"github.com/noah-isme/participation-sync-api/internal/repository"
	"github.com/noah-isme/participation-sync-api/internal/service"
	"github.com/noah-isme/participation-sync-api/internal/sis"
	"github.com/noah-isme/participation-sync-api/pkg/cache"
	"github.com/noah-isme/participation-sync-api/pkg/config"
	"github.com/noah-isme/participation-sync-api/pkg/database"
	"github.com/noah-isme/participation-sync-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/participation-sync-api/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("reporting database unavailable", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// lookup caching is an optimisation; stages still work without it
		logr.Sugar().Warnw("redis unavailable, lookup cache disabled", "error", err)
		redisClient = nil
	}

	metrics := service.NewMetricsService()

	sisClient := sis.NewClient(cfg.SIS, logr, metrics)
	lmsClient := lms.NewClient(cfg.LMS, logr, metrics)

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	numberRepo := repository.NewStudentNumberRepository(db)
	decisionRepo := repository.NewDecisionLogRepository(db)

	courseCodes := models.CourseStatusCodes{
		Completed: cfg.Sync.CourseCompletedCode,
		Scheduled: cfg.Sync.CourseScheduledCode,
		Dropped:   cfg.Sync.CourseDroppedCode,
	}

	lookupSvc := service.NewLookupService(sisClient, cacheRepo, cfg.Sync.LookupCacheTTL, logr)
	termSvc := service.NewTermService(lookupSvc, lmsClient, logr)
	rosterSvc := service.NewRosterService(lookupSvc, sisClient, nil, logr)
	numberSvc := service.NewStudentNumberService(numberRepo, sisClient, cfg.Sync.StudentNumberChunkSize, nil, logr)
	courseSvc := service.NewCourseService(lmsClient, lookupSvc, nil, logr)
	submissionSvc := service.NewSubmissionService(lmsClient, nil, logr)
	participationSvc, err := service.NewParticipationService(cfg.Sync.CampusTimezone, nil, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid campus timezone", "error", err)
	}

	resolver := service.NewAttendanceResolver(cfg.Sync.MeetingCancelledCode)
	activationSvc := service.NewActivationService(sisClient, resolver, logr)
	historySvc := service.NewHistoryService(sisClient, cfg.Sync.EnrolledStatusID, logr)
	courseStatusSvc := service.NewCourseStatusService(sisClient, courseCodes, logr)
	pipeline := service.NewPromotionPipeline(
		sisClient,
		sisClient,
		lookupSvc,
		activationSvc,
		service.NewPromotionService(),
		service.NewReconcileService(cfg.Sync.EnrolledStatusID),
		historySvc,
		courseStatusSvc,
		decisionRepo,
		courseCodes,
		cfg.Sync.EnrolledStatusID,
		cfg.Sync.AttendanceWindowStart,
		nil,
		logr,
	)
	alertSvc := service.NewAlertService(sisClient, lookupSvc, cfg.SIS.BaseURL, nil, logr)

	termHandler := handler.NewTermHandler(termSvc)
	studentHandler := handler.NewStudentHandler(rosterSvc, numberSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, submissionSvc, participationSvc)
	promotionHandler := handler.NewPromotionHandler(pipeline, metrics)
	alertHandler := handler.NewAlertHandler(alertSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(appMiddleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	stages := r.Group(cfg.APIPrefix)
	stages.Use(appMiddleware.FunctionKey(cfg.FunctionKey))
	{
		stages.POST("/terms/resolve", termHandler.Resolve)
		stages.POST("/students", studentHandler.List)
		stages.POST("/students/numbers", studentHandler.Numbers)
		stages.POST("/courses", courseHandler.List)
		stages.POST("/submissions", courseHandler.Submissions)
		stages.POST("/submissions/aggregate", courseHandler.Aggregate)
		stages.POST("/promotions/evaluate", promotionHandler.Evaluate)
		stages.POST("/alerts/no-registered-courses", alertHandler.NoRegisteredCourses)
		stages.POST("/alerts/missing-attendance", alertHandler.MissingAttendance)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("sync gateway starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
