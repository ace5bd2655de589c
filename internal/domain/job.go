package domain

import (
	"errors"
	"fmt"
	"time"
)

// JobStatus represents the lifecycle state of a site generation job.
// Values include JobStatusQueued, JobStatusRunning, JobStatusDone, and JobStatusError.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

var (
	// ErrJobNotFound is returned when a job id is unknown to the store.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when a job id is inserted twice.
	ErrJobExists = errors.New("job already exists")
	// ErrInvalidTransition is returned when a status change breaks queued -> running -> done|error.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// ImageURLs holds the generated hero and contact image locations.
type ImageURLs struct {
	Hero    string `json:"hero"`
	Contact string `json:"contact"`
}

// Job represents one request to produce or update a generated website.
type Job struct {
	ID          string     `json:"job_id"`
	RowID       string     `json:"row_id"`
	Status      JobStatus  `json:"status"`
	ChatID      *string    `json:"chat_id"`
	SiteURL     *string    `json:"site_url"`
	ImageURLs   *ImageURLs `json:"image_urls"`
	Error       *string    `json:"error"`
	CallbackURL string     `json:"callback_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewJob builds a queued job record.
// Parameters:
//   - id: generated job id.
//   - rowID: caller correlation token.
//   - callbackURL: destination of the terminal notification.
//   - chatID: caller-supplied chat id, empty when creating a new site.
//
// Returns:
//   - *Job: job in the queued state.
func NewJob(id, rowID, callbackURL, chatID string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:          id,
		RowID:       rowID,
		Status:      JobStatusQueued,
		ChatID:      optional(chatID),
		CallbackURL: callbackURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Start moves a queued job to running.
func (j *Job) Start() error {
	if j.Status != JobStatusQueued {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, JobStatusRunning)
	}
	j.Status = JobStatusRunning
	j.touch()
	return nil
}

// Complete moves a running job to done and records the generated site.
// Parameters:
//   - chatID: chat id returned by the site generator.
//   - siteURL: generated site URL, must be non-empty.
//   - images: generated images, nil when the image step was skipped.
//
// Returns:
//   - error: ErrInvalidTransition if the job is not running or siteURL is empty.
func (j *Job) Complete(chatID, siteURL string, images *ImageURLs) error {
	if j.Status != JobStatusRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, JobStatusDone)
	}
	if siteURL == "" {
		return fmt.Errorf("%w: done requires a site url", ErrInvalidTransition)
	}
	j.Status = JobStatusDone
	j.ChatID = optional(chatID)
	j.SiteURL = optional(siteURL)
	j.ImageURLs = images
	j.Error = nil
	j.touch()
	return nil
}

// Fail moves a running job to error.
// Parameters:
//   - message: human readable failure, must be non-empty.
//   - chatID: chat id to keep on the record, empty for none.
//
// Returns:
//   - error: ErrInvalidTransition if the job is not running or message is empty.
func (j *Job) Fail(message, chatID string) error {
	if j.Status != JobStatusRunning {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, JobStatusError)
	}
	if message == "" {
		return fmt.Errorf("%w: error requires a message", ErrInvalidTransition)
	}
	j.Status = JobStatusError
	j.ChatID = optional(chatID)
	j.SiteURL = nil
	j.ImageURLs = nil
	j.Error = optional(message)
	j.touch()
	return nil
}

// Clone returns a deep copy so callers never share pointers with the store.
func (j *Job) Clone() *Job {
	c := *j
	c.ChatID = cloneString(j.ChatID)
	c.SiteURL = cloneString(j.SiteURL)
	c.Error = cloneString(j.Error)
	if j.ImageURLs != nil {
		images := *j.ImageURLs
		c.ImageURLs = &images
	}
	return &c
}

func (j *Job) touch() {
	j.UpdatedAt = time.Now().UTC()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
