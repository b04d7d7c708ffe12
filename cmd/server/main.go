package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/medikart/medikart-backend/config"
	"github.com/medikart/medikart-backend/internal/app/controller"
	"github.com/medikart/medikart-backend/internal/app/repository"
	"github.com/medikart/medikart-backend/internal/app/service"
	"github.com/medikart/medikart-backend/internal/db"
	"github.com/medikart/medikart-backend/internal/middleware"
	"github.com/medikart/medikart-backend/internal/router"
	"github.com/medikart/medikart-backend/internal/scheduler"
	"github.com/medikart/medikart-backend/internal/storage"
	"github.com/medikart/medikart-backend/pkg/logger"
	"github.com/medikart/medikart-backend/pkg/redis"
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

	logger.Info("Starting MediKart Merchant Backend", map[string]interface{}{
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

	// Redis backs the signed-URL cache; the app still works without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, signed URL caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Blob store
	blobStore := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize repositories
	progressRepo := repository.NewProgressRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	documentRepo := repository.NewDocumentRepository(db.GetDB())
	payoutRepo := repository.NewPayoutRepository(db.GetDB())
	mediaRepo := repository.NewMediaRepository(db.GetDB())
	sequenceRepo := repository.NewSequenceRepository(db.GetDB())

	// Initialize services
	allocator := service.NewPublicIDAllocator(sequenceRepo, storeRepo, progressRepo, cfg.Onboarding.StorePublicIDPrefix)
	draftService := service.NewDraftService(storeRepo, allocator)
	documentSync := service.NewDocumentSyncService(documentRepo, blobStore)
	payoutSync := service.NewPayoutSyncService(payoutRepo, blobStore)
	mediaSync := service.NewMediaSyncService(mediaRepo, storeRepo, blobStore)
	onboardingService := service.NewOnboardingService(
		progressRepo,
		storeRepo,
		draftService,
		documentSync,
		payoutSync,
		mediaSync,
		allocator,
		blobStore,
		cfg.Onboarding.PresignTTL,
	)
	menuTemplates := service.NewMenuTemplateService()

	// Initialize controllers
	onboardingController := controller.NewOnboardingController(onboardingService, menuTemplates)
	uploadController := controller.NewUploadController(blobStore, cfg.Onboarding.PresignTTL)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(onboardingController, uploadController, authMiddleware, cfg)
	engine := r.Setup()

	// Background sweep for registrations whose draft was deleted out-of-band
	progressScheduler := scheduler.NewProgressScheduler(onboardingService, cfg.Onboarding.SweepSchedule)
	if err := progressScheduler.Start(); err != nil {
		logger.Error("Failed to start progress scheduler", err)
	}
	defer progressScheduler.Stop()

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
