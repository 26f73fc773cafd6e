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

	_ "github.com/trainup/training-api/api/swagger"
	"github.com/trainup/training-api/internal/handler"
	"github.com/trainup/training-api/internal/middleware"
	"github.com/trainup/training-api/internal/repository"
	"github.com/trainup/training-api/internal/service"
	"github.com/trainup/training-api/internal/validation"
	"github.com/trainup/training-api/pkg/cache"
	"github.com/trainup/training-api/pkg/config"
	"github.com/trainup/training-api/pkg/database"
	"github.com/trainup/training-api/pkg/logger"
	corsmiddleware "github.com/trainup/training-api/pkg/middleware/cors"
	reqidmiddleware "github.com/trainup/training-api/pkg/middleware/requestid"
)

// @title Training Management API
// @version 1.0.0
// @description Students, courses, enrollments, certificates and reporting
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}

	validate := validator.New()
	if err := validation.Register(validate); err != nil {
		logr.Fatal("failed to register validators", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()

	// Redis is optional: without it verification lookups just skip the cache.
	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
	} else {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), cfg.Certificates.VerifyCacheTTL, logr)
	}

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	certificationRepo := repository.NewCertificationRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo,
		cfg.Enrollments, metricsSvc, validate, logr)
	certificationSvc := service.NewCertificationService(certificationRepo, enrollmentRepo,
		cacheSvc, cfg.Certificates, metricsSvc, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentSvc, validate, logr)
	reportSvc := service.NewReportService(reportRepo, courseRepo, auditRepo, logr)

	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, attendanceSvc)
	certificationHandler := handler.NewCertificationHandler(certificationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(cfg.JWT.Secret)

	students := api.Group("/students")
	{
		students.GET("", studentHandler.List)
		students.POST("", auth, studentHandler.Register)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", auth, studentHandler.Update)
		students.DELETE("/:id", auth, studentHandler.Deactivate)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.POST("", auth, courseHandler.Create)
		courses.GET("/:id", courseHandler.Get)
		courses.PUT("/:id", auth, courseHandler.Update)
		courses.GET("/:id/availability", courseHandler.Availability)
		courses.GET("/:id/statistics", reportHandler.CourseStatistics)
		courses.GET("/:id/enrollments/export", auth, enrollmentHandler.ExportCSV)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.GET("", enrollmentHandler.List)
		enrollments.POST("", auth, enrollmentHandler.Create)
		enrollments.GET("/:id", enrollmentHandler.Get)
		enrollments.DELETE("/:id", auth, enrollmentHandler.Drop)
		enrollments.PUT("/:id/progress", auth, enrollmentHandler.UpdateProgress)
		enrollments.PUT("/:id/grade", auth, enrollmentHandler.RecordGrade)
		enrollments.GET("/:id/attendance", enrollmentHandler.ListAttendance)
		enrollments.POST("/:id/attendance", auth, enrollmentHandler.RecordAttendance)
		enrollments.GET("/:id/assessments", enrollmentHandler.ListAssessments)
		enrollments.POST("/:id/assessments", auth, enrollmentHandler.RecordAssessment)
		enrollments.GET("/:id/certificates", certificationHandler.ListByEnrollment)
	}

	certificates := api.Group("/certificates")
	{
		certificates.POST("", auth, certificationHandler.Issue)
		certificates.GET("/:id", certificationHandler.Get)
		certificates.GET("/:id/pdf", certificationHandler.Download)
	}
	// Verification stays public so anyone holding a code can check it.
	api.GET("/certificates/verify/:code", certificationHandler.Verify)

	api.GET("/activity-logs", auth, reportHandler.ActivityLogs)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		logr.Error("failed to close database", zap.Error(err))
	}
}
