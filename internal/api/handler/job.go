package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/timmy/sitegen/internal/api/middleware"
	"github.com/timmy/sitegen/internal/domain"
	"github.com/timmy/sitegen/internal/logger"
	"github.com/timmy/sitegen/internal/repository"
)

// JobScheduler creates a queued job record and schedules it for execution.
type JobScheduler interface {
	Enqueue(ctx context.Context, req domain.JobRequest) (*domain.Job, error)
}

// CredentialChecker reports whether the collaborator credentials needed to run a job are present.
type CredentialChecker func() error

// JobHandler handles the job endpoints.
type JobHandler struct {
	scheduler   JobScheduler
	store       repository.JobStore
	credentials CredentialChecker
}

// NewJobHandler creates a new job handler.
// Parameters:
//   - scheduler: creates and schedules jobs.
//   - store: job record store used for lookups.
//   - credentials: collaborator credential check run before every submission; nil skips it.
// Returns:
//   - *JobHandler: initialized handler.
func NewJobHandler(scheduler JobScheduler, store repository.JobStore, credentials CredentialChecker) *JobHandler {
	return &JobHandler{
		scheduler:   scheduler,
		store:       store,
		credentials: credentials,
	}
}

// jsonFieldNames maps request struct fields to their wire names for validation messages.
var jsonFieldNames = map[string]string{
	"RowID":       "row_id",
	"Prompt":      "prompt",
	"CallbackURL": "callback_url",
}

// CreateJob handles POST /jobs.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) CreateJob(c *gin.Context) {
	ctx := c.Request.Context()

	if h.credentials != nil {
		if err := h.credentials(); err != nil {
			logger.CtxError(ctx, "Cannot accept job: %v", err)
			errorResponse(c, http.StatusInternalServerError, "Server is missing collaborator credentials")
			return
		}
	}

	var req domain.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	if msg := validateJobRequest(&req); msg != "" {
		errorResponse(c, http.StatusBadRequest, msg)
		return
	}

	job, err := h.scheduler.Enqueue(ctx, req)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Failed to enqueue job")
		errorResponse(c, http.StatusServiceUnavailable, "Failed to schedule job")
		return
	}

	logger.With(logger.Fields{
		logger.FieldJobID: job.ID,
		logger.FieldRowID: job.RowID,
	}).Info(ctx, "Job queued")

	c.JSON(http.StatusOK, gin.H{
		"status": "queued",
		"job_id": job.ID,
	})
}

// GetJob handles GET /jobs/:job_id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.store.Get(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			errorResponse(c, http.StatusNotFound, "Job not found")
			return
		}
		middleware.GetLogger(c).WithError(err).Error("Failed to load job")
		errorResponse(c, http.StatusInternalServerError, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, job)
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status": "error",
		"error":  message,
	})
}

// bindErrorMessage turns a binding failure into a short message naming the offending field.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		name, ok := jsonFieldNames[fe.Field()]
		if !ok {
			name = fe.Field()
		}
		if fe.Tag() == "url" {
			return name + " must be a valid URL"
		}
		return "Missing required field: " + name
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	case errors.As(err, &syntaxErr):
		return "Invalid JSON body"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Invalid type for field: %s", typeErr.Field)
	}
	return "Invalid request: " + err.Error()
}

// validateJobRequest trims the request in place and returns a message for the first invalid field.
// Binding tags reject empty strings; this also rejects blank ones and non-HTTP callback schemes.
func validateJobRequest(req *domain.JobRequest) string {
	req.RowID = strings.TrimSpace(req.RowID)
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.CallbackURL = strings.TrimSpace(req.CallbackURL)
	req.ChatID = strings.TrimSpace(req.ChatID)
	req.SiteName = strings.TrimSpace(req.SiteName)
	req.BusinessType = strings.TrimSpace(req.BusinessType)
	req.Location = strings.TrimSpace(req.Location)

	switch {
	case req.RowID == "":
		return "Missing required field: row_id"
	case req.Prompt == "":
		return "Missing required field: prompt"
	case req.CallbackURL == "":
		return "Missing required field: callback_url"
	}

	u, err := url.Parse(req.CallbackURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "callback_url must be a valid URL"
	}
	return ""
}
