package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/sitegen/internal/api"
	"github.com/timmy/sitegen/internal/config"
	"github.com/timmy/sitegen/internal/logger"
	"github.com/timmy/sitegen/internal/repository"
	"github.com/timmy/sitegen/internal/service"
	"github.com/timmy/sitegen/internal/storage"
)

func main() {
	// Initialize logger from LOG_* environment variables
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	// Missing collaborator keys are reported per request, so the service can still come up
	if err := cfg.ValidateCredentials(); err != nil {
		appLogger.WithError(err).Warn("Collaborator credentials incomplete, job submissions will be rejected")
	}
	if cfg.Auth.APIKey == "" {
		appLogger.Warn("API_KEY is not set, all job endpoints will return 500")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize job store
	store, err := repository.NewJobStore(&cfg.Store)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize job store")
	}
	appLogger.WithField("driver", cfg.Store.Driver).Info("Job store ready")

	// Initialize image storage (optional; only needed for inline image data)
	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled() {
		objectStorage, err = storage.NewStorage(&cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
		appLogger.WithField("bucket", cfg.Storage.Bucket).Info("Image storage ready")
	}

	// Initialize collaborators
	var imageGenerator service.ImageGenerator
	if cfg.Images.Enabled {
		imageClient := service.NewImageClient(&service.ImageClientConfig{
			Model:   cfg.Images.Model,
			APIKey:  cfg.Images.APIKey,
			BaseURL: cfg.Images.BaseURL,
			Size:    cfg.Images.Size,
			Timeout: cfg.Images.Timeout,
		})
		imageGenerator = imageClient
		appLogger.WithField("model", imageClient.GetModel()).Info("Image step enabled")
	}

	siteClient := service.NewSiteClient(&service.SiteClientConfig{
		APIKey:  cfg.Site.APIKey,
		BaseURL: cfg.Site.BaseURL,
		Timeout: cfg.Site.Timeout,
	})

	orchestrator := service.NewOrchestrator(
		store,
		imageGenerator,
		service.NewImagePublisher(objectStorage, cfg.Storage.Prefix),
		siteClient,
		service.NewCallbackNotifier(cfg.Callback.Timeout),
		appLogger,
		service.OrchestratorConfig{
			QueueSize:       cfg.Queue.Size,
			ImagesEnabled:   cfg.Images.Enabled,
			ImageTimeout:    cfg.Images.Timeout,
			SiteTimeout:     cfg.Site.Timeout,
			CallbackTimeout: cfg.Callback.Timeout,
		},
	)
	orchestrator.Start(ctx)

	// Setup router
	router := api.SetupRouter(orchestrator, store, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	// In-flight jobs still get to finish and send their callbacks
	appLogger.Info("Waiting for running jobs to finish...")
	orchestrator.Stop()

	appLogger.Info("Server exited")
}
