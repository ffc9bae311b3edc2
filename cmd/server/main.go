package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pngsmec/msme-registry-backend/config"
	"github.com/pngsmec/msme-registry-backend/internal/app/controller"
	"github.com/pngsmec/msme-registry-backend/internal/app/repository"
	"github.com/pngsmec/msme-registry-backend/internal/app/service"
	"github.com/pngsmec/msme-registry-backend/internal/db"
	"github.com/pngsmec/msme-registry-backend/internal/middleware"
	"github.com/pngsmec/msme-registry-backend/internal/router"
	"github.com/pngsmec/msme-registry-backend/internal/scheduler"
	"github.com/pngsmec/msme-registry-backend/internal/storage"
	"github.com/pngsmec/msme-registry-backend/pkg/logger"
	"github.com/pngsmec/msme-registry-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SMEC Registry Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the pending-queue cache and token revocation; the server
	// runs without it, just slower
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close redis connection", err)
			}
		}()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	smeRepo := repository.NewMSMERepository(db.GetDB())
	duplicateRepo := repository.NewDuplicateRepository(db.GetDB())
	auditRepo := repository.NewAuditRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, &cfg.JWT)
	smeService := service.NewSMEService(smeRepo, auditRepo)
	mergeService := service.NewMergeService(db.GetDB())
	duplicateService := service.NewDuplicateService(
		duplicateRepo,
		smeRepo,
		auditRepo,
		mergeService,
		nil,
		cfg.Detection.PendingThreshold,
	)
	exportService := service.NewExportService(smeRepo, duplicateRepo)

	// Initialize storage
	s3Storage := storage.NewS3Storage(&cfg.S3)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	smeController := controller.NewSMEController(smeService, s3Storage)
	duplicateController := controller.NewDuplicateController(duplicateService)
	exportController := controller.NewExportController(exportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the nightly detection scan
	detectionScheduler := scheduler.NewDetectionScheduler(duplicateService, cfg.Detection.CronSchedule)
	if err := detectionScheduler.Start(); err != nil {
		logger.Fatal("Failed to start detection scheduler", err)
	}
	defer detectionScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		smeController,
		duplicateController,
		exportController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
