package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/sitegen/internal/config"
	"github.com/timmy/sitegen/internal/domain"
	"github.com/timmy/sitegen/internal/logger"
	"github.com/timmy/sitegen/internal/repository"
	"github.com/timmy/sitegen/internal/service"
	"github.com/timmy/sitegen/internal/storage"
)

// logNotifier stands in for the webhook when no callback URL is given.
type logNotifier struct {
	log *logger.Logger
}

func (n logNotifier) Notify(ctx context.Context, callbackURL string, payload domain.CallbackPayload) error {
	n.log.WithFields(logger.Fields{
		logger.FieldJobID:  payload.JobID,
		logger.FieldStatus: string(payload.Status),
	}).Info("Callback skipped (no callback URL)")
	return nil
}

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "sitegen-generate",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	prompt := flag.String("prompt", "", "Site prompt (required)")
	rowID := flag.String("row-id", "cli", "Caller row id echoed in the result")
	chatID := flag.String("chat-id", "", "Existing chat to edit instead of creating a new site")
	siteName := flag.String("site-name", "", "Business name used for image prompts")
	businessType := flag.String("business-type", "", "Business type used for image prompts")
	location := flag.String("location", "", "Business location used for image prompts")
	callbackURL := flag.String("callback", "", "Webhook to notify; empty logs the outcome instead")
	noImages := flag.Bool("no-images", false, "Skip the image step")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *prompt == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if *noImages {
		cfg.Images.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ValidateCredentials(); err != nil {
		appLogger.WithError(err).Fatal("Missing collaborator credentials")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	var objectStorage storage.ObjectStorage
	if cfg.Storage.Enabled() {
		objectStorage, err = storage.NewStorage(&cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	var imageGenerator service.ImageGenerator
	if cfg.Images.Enabled {
		imageGenerator = service.NewImageClient(&service.ImageClientConfig{
			Model:   cfg.Images.Model,
			APIKey:  cfg.Images.APIKey,
			BaseURL: cfg.Images.BaseURL,
			Size:    cfg.Images.Size,
			Timeout: cfg.Images.Timeout,
		})
	}

	var notifier service.Notifier = logNotifier{log: appLogger}
	if *callbackURL != "" {
		notifier = service.NewCallbackNotifier(cfg.Callback.Timeout)
	}

	store := repository.NewMemoryJobStore()
	orchestrator := service.NewOrchestrator(
		store,
		imageGenerator,
		service.NewImagePublisher(objectStorage, cfg.Storage.Prefix),
		service.NewSiteClient(&service.SiteClientConfig{
			APIKey:  cfg.Site.APIKey,
			BaseURL: cfg.Site.BaseURL,
			Timeout: cfg.Site.Timeout,
		}),
		notifier,
		appLogger,
		service.OrchestratorConfig{
			QueueSize:       1,
			ImagesEnabled:   cfg.Images.Enabled,
			ImageTimeout:    cfg.Images.Timeout,
			SiteTimeout:     cfg.Site.Timeout,
			CallbackTimeout: cfg.Callback.Timeout,
		},
	)

	req := domain.JobRequest{
		RowID:        *rowID,
		Prompt:       *prompt,
		CallbackURL:  *callbackURL,
		ChatID:       *chatID,
		SiteName:     *siteName,
		BusinessType: *businessType,
		Location:     *location,
	}

	// Run the job synchronously in this process
	job := domain.NewJob(service.NewJobID(), req.RowID, req.CallbackURL, req.ChatID)
	if err := store.Create(ctx, job); err != nil {
		appLogger.WithError(err).Fatal("Failed to create job")
	}
	orchestrator.Run(appLogger.WithContext(ctx), service.Task{JobID: job.ID, Request: req})

	result, err := store.Get(ctx, job.ID)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load job")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		appLogger.WithError(err).Fatal("Failed to write result")
	}
	if result.Status != domain.JobStatusDone {
		os.Exit(1)
	}
}
