package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/timmy/sitegen/internal/domain"
	"github.com/timmy/sitegen/internal/logger"
	"github.com/timmy/sitegen/internal/prompts"
	"github.com/timmy/sitegen/internal/repository"
)

// Task is the message handed from the HTTP layer to the orchestrator for one job.
type Task struct {
	JobID   string
	Request domain.JobRequest
}

// OrchestratorConfig holds the orchestrator's scheduling and timeout settings.
type OrchestratorConfig struct {
	QueueSize       int
	ImagesEnabled   bool
	ImageTimeout    time.Duration
	SiteTimeout     time.Duration
	CallbackTimeout time.Duration
}

// Orchestrator drives each job from queued to done or error and then fires its callback.
// Tasks arrive on a buffered channel; the dispatch loop runs every task in its own goroutine.
type Orchestrator struct {
	store     repository.JobStore
	images    ImageGenerator
	publisher *ImagePublisher
	sites     SiteGenerator
	notifier  Notifier
	logger    *logger.Logger
	cfg       OrchestratorConfig

	tasks    chan Task
	mu       sync.RWMutex
	started  bool
	closed   bool
	loopDone chan struct{}
	running  sync.WaitGroup
}

// NewOrchestrator creates a new orchestrator.
// Parameters:
//   - store: job record store.
//   - images: image generator; nil disables the image step.
//   - publisher: turns generated images into public URLs.
//   - sites: site generator.
//   - notifier: callback notifier.
//   - log: base logger.
//   - cfg: queue size and per-step timeouts.
//
// Returns:
//   - *Orchestrator: orchestrator ready to Start.
func NewOrchestrator(
	store repository.JobStore,
	images ImageGenerator,
	publisher *ImagePublisher,
	sites SiteGenerator,
	notifier Notifier,
	log *logger.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if images == nil {
		cfg.ImagesEnabled = false
	}
	if publisher == nil {
		publisher = NewImagePublisher(nil, "")
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Orchestrator{
		store:     store,
		images:    images,
		publisher: publisher,
		sites:     sites,
		notifier:  notifier,
		logger:    log,
		cfg:       cfg,
		tasks:     make(chan Task, cfg.QueueSize),
		loopDone:  make(chan struct{}),
	}
}

// Start launches the dispatch loop. Jobs run detached from ctx cancellation:
// once scheduled, a job always reaches a terminal state.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started || o.closed {
		return
	}
	o.started = true

	jobCtx := o.logger.WithContext(context.WithoutCancel(ctx))

	go func() {
		defer close(o.loopDone)
		for task := range o.tasks {
			o.running.Add(1)
			go func(t Task) {
				defer o.running.Done()
				o.Run(jobCtx, t)
			}(task)
		}
	}()
}

// Stop stops accepting tasks, drains the queue and waits for running jobs to finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.tasks)
	}
	started := o.started
	o.mu.Unlock()

	if started {
		<-o.loopDone
	}
	o.running.Wait()
}

// Submit hands a task to the dispatch loop.
// Returns ErrOrchestratorClosed after Stop, or ctx.Err() if the queue stays full.
func (o *Orchestrator) Submit(ctx context.Context, task Task) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return ErrOrchestratorClosed
	}

	select {
	case o.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue creates the queued job record for req and schedules it.
// Parameters:
//   - ctx: request context.
//   - req: validated job request.
//
// Returns:
//   - *domain.Job: the queued record.
//   - error: non-nil if the record cannot be created or scheduled.
func (o *Orchestrator) Enqueue(ctx context.Context, req domain.JobRequest) (*domain.Job, error) {
	callerChatID := strings.TrimSpace(req.ChatID)
	job := domain.NewJob(NewJobID(), req.RowID, req.CallbackURL, callerChatID)
	if err := o.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := o.Submit(ctx, Task{JobID: job.ID, Request: req}); err != nil {
		// Close the record out so it never sits in queued forever.
		msg := fmt.Sprintf("scheduling: %v", err)
		if _, uerr := o.store.Update(context.WithoutCancel(ctx), job.ID, func(j *domain.Job) error {
			if err := j.Start(); err != nil {
				return err
			}
			return j.Fail(msg, callerChatID)
		}); uerr != nil {
			logger.FromContext(ctx).WithError(uerr).Error("Failed to close unscheduled job")
		}
		return nil, fmt.Errorf("failed to schedule job: %w", err)
	}

	return job, nil
}

// Run drives one job through its steps synchronously. Failures never escape: they are
// recorded on the job and reported through the callback.
func (o *Orchestrator) Run(ctx context.Context, task Task) {
	ctx = logger.ForJob(ctx, task.JobID, task.Request.RowID)
	start := time.Now()

	if _, err := o.store.Update(ctx, task.JobID, (*domain.Job).Start); err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to start job")
		return
	}
	logger.CtxInfo(ctx, "Job running")

	images, chatID, siteURL, stepErr := o.execute(ctx, task)

	var job *domain.Job
	var err error
	if stepErr != nil {
		callerChatID := strings.TrimSpace(task.Request.ChatID)
		job, err = o.store.Update(ctx, task.JobID, func(j *domain.Job) error {
			return j.Fail(stepErr.Error(), callerChatID)
		})
	} else {
		job, err = o.store.Update(ctx, task.JobID, func(j *domain.Job) error {
			return j.Complete(chatID, siteURL, images)
		})
	}
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Failed to record job outcome")
		return
	}

	entry := logger.With(logger.Fields{logger.FieldStatus: string(job.Status)}).
		WithDuration(time.Since(start))
	if stepErr != nil {
		entry.Warn(ctx, "Job failed: %v", stepErr)
	} else {
		entry.WithField(logger.FieldChatID, chatID).Info(ctx, "Job done: site_url=%s", siteURL)
	}

	o.notify(ctx, job)
}

// execute runs the image step (when enabled) and then the site step.
func (o *Orchestrator) execute(ctx context.Context, task Task) (*domain.ImageURLs, string, string, error) {
	var images *domain.ImageURLs
	if o.cfg.ImagesEnabled {
		var err error
		images, err = o.generateImages(logger.SetStep(ctx, string(StepImage)), task)
		if err != nil {
			return nil, "", "", &StepError{Step: StepImage, Err: err}
		}
	}

	chatID, siteURL, err := o.generateSite(logger.SetStep(ctx, string(StepSite)), task, images)
	if err != nil {
		return nil, "", "", &StepError{Step: StepSite, Err: err}
	}
	return images, chatID, siteURL, nil
}

func (o *Orchestrator) generateImages(ctx context.Context, task Task) (*domain.ImageURLs, error) {
	business := task.Request.Business()

	hero, err := o.generateImage(ctx, task.JobID, "hero", prompts.HeroImagePrompt(business))
	if err != nil {
		return nil, err
	}
	contact, err := o.generateImage(ctx, task.JobID, "contact", prompts.ContactImagePrompt(business))
	if err != nil {
		return nil, err
	}
	return &domain.ImageURLs{Hero: hero, Contact: contact}, nil
}

func (o *Orchestrator) generateImage(ctx context.Context, jobID, name, prompt string) (string, error) {
	ctx, cancel := withOptionalTimeout(ctx, o.cfg.ImageTimeout)
	defer cancel()

	img, err := o.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s image: %w", name, err)
	}
	url, err := o.publisher.Publish(ctx, jobID, name, img)
	if err != nil {
		return "", fmt.Errorf("%s image: %w", name, err)
	}
	logger.CtxDebug(ctx, "Generated %s image: %s", name, url)
	return url, nil
}

func (o *Orchestrator) generateSite(ctx context.Context, task Task, images *domain.ImageURLs) (string, string, error) {
	ctx, cancel := withOptionalTimeout(ctx, o.cfg.SiteTimeout)
	defer cancel()

	prompt := prompts.BuildSitePrompt(task.Request.Prompt, images)
	callerChatID := strings.TrimSpace(task.Request.ChatID)

	var resp SiteResponse
	var err error
	if callerChatID != "" {
		logger.CtxInfo(ctx, "Editing existing site: chat_id=%s", callerChatID)
		resp, err = o.sites.EditSite(ctx, callerChatID, prompt)
	} else {
		logger.CtxInfo(ctx, "Creating new site")
		resp, err = o.sites.CreateSite(ctx, prompt)
	}
	if err != nil {
		return "", "", err
	}

	siteURL, ok := ExtractSiteURL(resp)
	if !ok {
		return "", "", ErrNoSiteURL
	}
	return ExtractChatID(resp, callerChatID), siteURL, nil
}

// notify makes the single callback attempt; its outcome never touches the job.
func (o *Orchestrator) notify(ctx context.Context, job *domain.Job) {
	ctx, cancel := withOptionalTimeout(logger.SetStep(ctx, "callback"), o.cfg.CallbackTimeout)
	defer cancel()

	start := time.Now()
	err := o.notifier.Notify(ctx, job.CallbackURL, domain.NewCallbackPayload(job))
	entry := logger.With(nil).WithDuration(time.Since(start))
	if err != nil {
		entry.Warn(ctx, "Callback delivery failed: url=%s, error=%v", job.CallbackURL, err)
		return
	}
	entry.Info(ctx, "Callback delivered: url=%s", job.CallbackURL)
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
