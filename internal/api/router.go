package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/sitegen/internal/api/handler"
	"github.com/timmy/sitegen/internal/api/middleware"
	"github.com/timmy/sitegen/internal/config"
	"github.com/timmy/sitegen/internal/logger"
	"github.com/timmy/sitegen/internal/repository"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	scheduler handler.JobScheduler,
	store repository.JobStore,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.Server.CORS))

	// Create handlers
	jobHandler := handler.NewJobHandler(scheduler, store, cfg.ValidateCredentials)

	// Health check
	r.GET("/", handler.Liveness)
	r.GET("/health", handler.Liveness)

	// Job routes
	jobs := r.Group("/jobs", middleware.APIKeyAuth(cfg.Auth.APIKey))
	{
		jobs.POST("", jobHandler.CreateJob)
		jobs.GET("/:job_id", jobHandler.GetJob)
	}

	return r
}
