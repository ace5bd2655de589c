package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/timmy/sitegen/internal/domain"
	"github.com/timmy/sitegen/internal/repository"
)

type orchestratorFixture struct {
	store    *repository.MemoryJobStore
	sites    *fakeSites
	images   *fakeImages
	notifier *fakeNotifier
	storage  *fakeStorage
	orch     *Orchestrator
}

func newFixture(imagesEnabled bool) *orchestratorFixture {
	f := &orchestratorFixture{
		store:    repository.NewMemoryJobStore(),
		sites:    &fakeSites{resp: SiteResponse{"id": "c1", "demo": "https://demo.test/c1"}},
		images:   &fakeImages{},
		notifier: newFakeNotifier(),
		storage:  newFakeStorage(),
	}
	var images ImageGenerator
	if imagesEnabled {
		images = f.images
		f.images.results = []*GeneratedImage{
			{URL: "https://img.test/hero.png"},
			{URL: "https://img.test/contact.png"},
		}
	}
	f.orch = NewOrchestrator(f.store, images, NewImagePublisher(f.storage, "sites"), f.sites, f.notifier, nil,
		OrchestratorConfig{
			QueueSize:       8,
			ImagesEnabled:   imagesEnabled,
			ImageTimeout:    time.Second,
			SiteTimeout:     time.Second,
			CallbackTimeout: time.Second,
		})
	return f
}

// runJob creates the record the way Enqueue does and drives it synchronously.
func (f *orchestratorFixture) runJob(t *testing.T, req domain.JobRequest) *domain.Job {
	t.Helper()
	ctx := context.Background()
	job := domain.NewJob(NewJobID(), req.RowID, req.CallbackURL, req.ChatID)
	if err := f.store.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.orch.Run(ctx, Task{JobID: job.ID, Request: req})

	got, err := f.store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return got
}

func baseRequest() domain.JobRequest {
	return domain.JobRequest{
		RowID:        "r1",
		Prompt:       "build a site",
		CallbackURL:  "https://cb.test/x",
		SiteName:     "Rosa's Bakery",
		BusinessType: "bakery",
		Location:     "Lisbon",
	}
}

func TestOrchestratorRunSuccessWithImages(t *testing.T) {
	f := newFixture(true)
	job := f.runJob(t, baseRequest())

	if job.Status != domain.JobStatusDone {
		t.Fatalf("expected done, got %s (error=%v)", job.Status, job.Error)
	}
	if *job.ChatID != "c1" || *job.SiteURL != "https://demo.test/c1" || job.Error != nil {
		t.Errorf("unexpected job: %+v", job)
	}
	if job.ImageURLs == nil || job.ImageURLs.Hero != "https://img.test/hero.png" || job.ImageURLs.Contact != "https://img.test/contact.png" {
		t.Errorf("unexpected image urls: %+v", job.ImageURLs)
	}

	if len(f.images.prompts) != 2 || !strings.Contains(f.images.prompts[0], "Rosa's Bakery") {
		t.Errorf("unexpected image prompts: %v", f.images.prompts)
	}

	calls := f.sites.Calls()
	if len(calls) != 1 || calls[0].edit {
		t.Fatalf("expected one create call, got %+v", calls)
	}
	for _, want := range []string{"build a site", "https://img.test/hero.png", "https://img.test/contact.png"} {
		if !strings.Contains(calls[0].prompt, want) {
			t.Errorf("site prompt missing %q: %s", want, calls[0].prompt)
		}
	}

	payloads := f.notifier.Payloads()
	if len(payloads) != 1 {
		t.Fatalf("expected exactly one callback, got %d", len(payloads))
	}
	p := payloads[0]
	if p.RowID != "r1" || p.JobID != job.ID || p.Status != domain.JobStatusDone {
		t.Errorf("unexpected callback identity: %+v", p)
	}
	if *p.SiteURL != "https://demo.test/c1" || *p.HeroImageURL != "https://img.test/hero.png" || p.Error != nil {
		t.Errorf("unexpected callback payload: %+v", p)
	}
	if f.notifier.urls[0] != "https://cb.test/x" {
		t.Errorf("callback sent to %s", f.notifier.urls[0])
	}
}

func TestOrchestratorEditsWhenChatIDSupplied(t *testing.T) {
	f := newFixture(false)
	f.sites.resp = SiteResponse{"latestVersion": map[string]interface{}{"demoUrl": "https://demo.test/edit"}}

	req := baseRequest()
	req.ChatID = "chat-42"
	job := f.runJob(t, req)

	calls := f.sites.Calls()
	if len(calls) != 1 || !calls[0].edit || calls[0].chatID != "chat-42" {
		t.Fatalf("expected one edit call scoped to chat-42, got %+v", calls)
	}
	if calls[0].prompt != "build a site" {
		t.Errorf("expected prompt without image block, got %q", calls[0].prompt)
	}
	if job.Status != domain.JobStatusDone || *job.ChatID != "chat-42" {
		t.Errorf("expected done with caller chat id, got %+v", job)
	}
	if job.ImageURLs != nil {
		t.Errorf("expected no images when image step disabled, got %+v", job.ImageURLs)
	}
}

func TestOrchestratorBlankChatIDCreates(t *testing.T) {
	f := newFixture(false)
	req := baseRequest()
	req.ChatID = "   "
	f.runJob(t, req)

	calls := f.sites.Calls()
	if len(calls) != 1 || calls[0].edit {
		t.Fatalf("expected create call for blank chat id, got %+v", calls)
	}
}

func TestOrchestratorImageFailureSkipsSite(t *testing.T) {
	f := newFixture(true)
	f.images.err = errors.New("quota exceeded")

	req := baseRequest()
	req.ChatID = "chat-7"
	job := f.runJob(t, req)

	if job.Status != domain.JobStatusError {
		t.Fatalf("expected error, got %s", job.Status)
	}
	if job.Error == nil || !strings.HasPrefix(*job.Error, "image step:") || !strings.Contains(*job.Error, "quota exceeded") {
		t.Errorf("unexpected error message: %v", job.Error)
	}
	if job.SiteURL != nil || job.ImageURLs != nil {
		t.Errorf("failed job must not carry site or images: %+v", job)
	}
	if job.ChatID == nil || *job.ChatID != "chat-7" {
		t.Errorf("expected caller chat id carried over, got %v", job.ChatID)
	}
	if calls := f.sites.Calls(); len(calls) != 0 {
		t.Errorf("site generator must not be called after image failure, got %+v", calls)
	}

	p := f.notifier.Payloads()[0]
	if p.Status != domain.JobStatusError || p.SiteURL != nil || p.RowID != "r1" || p.JobID != job.ID {
		t.Errorf("unexpected callback payload: %+v", p)
	}
}

func TestOrchestratorUnusableImage(t *testing.T) {
	f := newFixture(true)
	f.images.results = []*GeneratedImage{{}}

	job := f.runJob(t, baseRequest())
	if job.Status != domain.JobStatusError || !strings.Contains(*job.Error, "image step") {
		t.Fatalf("expected image step error, got %+v", job)
	}
	if len(f.sites.Calls()) != 0 {
		t.Error("site generator must not be called")
	}
}

func TestOrchestratorSiteFailures(t *testing.T) {
	tests := []struct {
		name    string
		resp    SiteResponse
		err     error
		wantMsg string
	}{
		{
			name:    "no site url",
			resp:    SiteResponse{"id": "c1", "webUrl": "https://v0.test/chat/c1"},
			wantMsg: "no site URL",
		},
		{
			name:    "collaborator error",
			err:     errors.New("HTTP 500"),
			wantMsg: "HTTP 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(false)
			f.sites.resp = tt.resp
			f.sites.err = tt.err

			job := f.runJob(t, baseRequest())

			if job.Status != domain.JobStatusError {
				t.Fatalf("expected error, got %s", job.Status)
			}
			if !strings.HasPrefix(*job.Error, "site step:") || !strings.Contains(*job.Error, tt.wantMsg) {
				t.Errorf("unexpected error message: %s", *job.Error)
			}
			if job.SiteURL != nil {
				t.Errorf("expected nil site url, got %s", *job.SiteURL)
			}

			p := f.notifier.Payloads()
			if len(p) != 1 || p[0].Status != domain.JobStatusError || p[0].SiteURL != nil {
				t.Errorf("unexpected callbacks: %+v", p)
			}
		})
	}
}

func TestOrchestratorCallbackFailureKeepsTerminalState(t *testing.T) {
	f := newFixture(false)
	f.notifier.err = errors.New("connection refused")

	job := f.runJob(t, baseRequest())

	if job.Status != domain.JobStatusDone {
		t.Errorf("callback failure must not change status, got %s", job.Status)
	}
	if n := len(f.notifier.Payloads()); n != 1 {
		t.Errorf("expected one callback attempt, got %d", n)
	}
}

func TestOrchestratorUploadsInlineImages(t *testing.T) {
	f := newFixture(true)
	data := pngBytes(t)
	f.images.results = []*GeneratedImage{{Data: data}, {Data: data}}

	job := f.runJob(t, baseRequest())

	if job.Status != domain.JobStatusDone {
		t.Fatalf("expected done, got %s (%v)", job.Status, job.Error)
	}
	wantHero := "https://cdn.test/sites/" + job.ID + "/hero.png"
	if job.ImageURLs.Hero != wantHero {
		t.Errorf("expected hero %s, got %s", wantHero, job.ImageURLs.Hero)
	}
	if f.storage.types["sites/"+job.ID+"/contact.png"] != "image/png" {
		t.Errorf("contact image not uploaded: %v", f.storage.types)
	}
}

func TestOrchestratorRunIgnoresTerminalJob(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	job := domain.NewJob("job_done", "r1", "https://cb.test/x", "")
	_ = job.Start()
	_ = job.Complete("c1", "https://demo.test/c1", nil)
	_ = f.store.Create(ctx, job)

	f.orch.Run(ctx, Task{JobID: job.ID, Request: baseRequest()})

	if len(f.sites.Calls()) != 0 || len(f.notifier.Payloads()) != 0 {
		t.Error("terminal job must not be re-run")
	}
}

func TestOrchestratorEnqueueDoesNotWaitForSite(t *testing.T) {
	f := newFixture(false)
	f.sites.release = make(chan struct{})
	f.orch.Start(context.Background())

	job, err := f.orch.Enqueue(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if job.Status != domain.JobStatusQueued {
		t.Errorf("expected queued record, got %s", job.Status)
	}

	// The site call is still blocked, so no callback can have been sent.
	select {
	case p := <-f.notifier.sent:
		t.Fatalf("callback sent before site generation finished: %+v", p)
	case <-time.After(50 * time.Millisecond):
	}

	close(f.sites.release)
	select {
	case p := <-f.notifier.sent:
		if p.JobID != job.ID || p.Status != domain.JobStatusDone {
			t.Errorf("unexpected callback: %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	f.orch.Stop()

	got, _ := f.store.Get(context.Background(), job.ID)
	if got.Status != domain.JobStatusDone {
		t.Errorf("expected done after stop, got %s", got.Status)
	}
}

func TestOrchestratorSubmitAfterStop(t *testing.T) {
	f := newFixture(false)
	f.orch.Start(context.Background())
	f.orch.Stop()

	if err := f.orch.Submit(context.Background(), Task{JobID: "x"}); !errors.Is(err, ErrOrchestratorClosed) {
		t.Errorf("expected ErrOrchestratorClosed, got %v", err)
	}

	_, err := f.orch.Enqueue(context.Background(), baseRequest())
	if !errors.Is(err, ErrOrchestratorClosed) {
		t.Fatalf("expected ErrOrchestratorClosed, got %v", err)
	}
	if f.store.Len() != 1 {
		t.Fatalf("expected the unscheduled record to exist, got %d", f.store.Len())
	}
}

func TestOrchestratorStopWithoutStart(t *testing.T) {
	f := newFixture(false)
	done := make(chan struct{})
	go func() {
		f.orch.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}
