package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/imanubhardwaj/easyappointments/api/swagger"
	"github.com/imanubhardwaj/easyappointments/internal/handler"
	"github.com/imanubhardwaj/easyappointments/internal/middleware"
	"github.com/imanubhardwaj/easyappointments/internal/models"
	"github.com/imanubhardwaj/easyappointments/internal/repository"
	"github.com/imanubhardwaj/easyappointments/internal/service"
	"github.com/imanubhardwaj/easyappointments/pkg/cache"
	"github.com/imanubhardwaj/easyappointments/pkg/config"
	"github.com/imanubhardwaj/easyappointments/pkg/database"
	"github.com/imanubhardwaj/easyappointments/pkg/jobs"
	"github.com/imanubhardwaj/easyappointments/pkg/logger"
	corsmiddleware "github.com/imanubhardwaj/easyappointments/pkg/middleware/cors"
	reqidmiddleware "github.com/imanubhardwaj/easyappointments/pkg/middleware/requestid"
)

// @title Easy!Appointments API
// @version 1.0.0
// @description Appointment booking and availability engine
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Warnw("redis unavailable, availability caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	providerRepo := repository.NewProviderRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	notifications := jobs.NewQueue("notifications", notificationHandler(logr), jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	notifications.Start(context.Background())
	defer notifications.Stop()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Booking.UnavailableDatesTTL, logr, redisClient != nil)
	availabilitySvc := service.NewAvailabilityService(providerRepo, serviceRepo, appointmentRepo, cacheSvc, validate, logr, cfg.Booking)
	bookingSvc := service.NewBookingService(appointmentRepo, customerRepo, serviceRepo, availabilitySvc, cacheSvc, notifications, validate, logr)
	providerSvc := service.NewProviderService(providerRepo, validate, logr)
	catalogSvc := service.NewCatalogService(serviceRepo, validate, logr)
	customerSvc := service.NewCustomerService(customerRepo, validate, logr)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, availabilitySvc, cacheSvc, validate, logr)
	agendaSvc := service.NewAgendaService(providerRepo, serviceRepo, appointmentRepo, customerRepo, logr)
	authSvc := service.NewAuthService(providerRepo, validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		Expiration:        cfg.JWT.Expiration,
		AdminEmail:        cfg.JWT.AdminEmail,
		AdminPasswordHash: cfg.JWT.AdminPasswordHash,
	})

	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc, metricsSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, metricsSvc)
	providerHandler := handler.NewProviderHandler(providerSvc, agendaSvc)
	serviceHandler := handler.NewServiceHandler(catalogSvc)
	customerHandler := handler.NewCustomerHandler(customerSvc)
	appointmentHandler := handler.NewAppointmentHandler(appointmentSvc)
	authHandler := handler.NewAuthHandler(authSvc)
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	api.POST("/availability/hours", availabilityHandler.Hours)
	api.POST("/availability/unavailable-dates", availabilityHandler.UnavailableDates)

	api.POST("/appointments", bookingHandler.Book)
	api.DELETE("/appointments/:hash", bookingHandler.Cancel)

	admin := api.Group("/admin", middleware.JWT(authSvc))

	adminOnly := admin.Group("", middleware.RequireRole(models.RoleAdmin))
	adminOnly.GET("/providers", providerHandler.List)
	adminOnly.POST("/providers", providerHandler.Create)
	adminOnly.PUT("/providers/:id", providerHandler.Update)
	adminOnly.DELETE("/providers/:id", providerHandler.Delete)

	adminOnly.GET("/services", serviceHandler.List)
	adminOnly.GET("/services/:id", serviceHandler.Get)
	adminOnly.POST("/services", serviceHandler.Create)
	adminOnly.PUT("/services/:id", serviceHandler.Update)
	adminOnly.DELETE("/services/:id", serviceHandler.Delete)

	adminOnly.GET("/customers", customerHandler.List)
	adminOnly.GET("/customers/:id", customerHandler.Get)
	adminOnly.POST("/customers", customerHandler.Create)
	adminOnly.PUT("/customers/:id", customerHandler.Update)
	adminOnly.DELETE("/customers/:id", customerHandler.Delete)

	adminOnly.GET("/appointments", appointmentHandler.List)
	adminOnly.GET("/appointments/:id", appointmentHandler.Get)
	adminOnly.POST("/appointments/blocks", appointmentHandler.CreateBlock)
	adminOnly.PUT("/appointments/:id/reschedule", appointmentHandler.Reschedule)
	adminOnly.DELETE("/appointments/:id", appointmentHandler.Delete)

	// Providers pass the role guard for their own id, so they can read
	// their own record and export their own agenda.
	providerScoped := admin.Group("", middleware.RequireRole(models.RoleAdmin))
	providerScoped.GET("/providers/:id", providerHandler.Get)
	providerScoped.GET("/providers/:id/agenda.pdf", providerHandler.AgendaPDF)
	providerScoped.GET("/providers/:id/agenda.csv", providerHandler.AgendaCSV)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

// notificationHandler dispatches booking lifecycle notifications. Email
// delivery is handled by an external relay; here we emit the structured
// payload it consumes.
func notificationHandler(logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		logr.Info("notification dispatched",
			zap.String("job_id", job.ID),
			zap.String("type", job.Type),
			zap.Any("payload", job.Payload),
		)
		return nil
	}
}
