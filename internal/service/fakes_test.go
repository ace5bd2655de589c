package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/timmy/sitegen/internal/domain"
)

type siteCall struct {
	edit   bool
	chatID string
	prompt string
}

// fakeSites is a SiteGenerator that records calls and returns a canned response.
type fakeSites struct {
	mu      sync.Mutex
	calls   []siteCall
	resp    SiteResponse
	err     error
	release chan struct{} // when non-nil, calls block until it is closed
}

func (f *fakeSites) CreateSite(ctx context.Context, prompt string) (SiteResponse, error) {
	return f.record(ctx, siteCall{prompt: prompt})
}

func (f *fakeSites) EditSite(ctx context.Context, chatID, prompt string) (SiteResponse, error) {
	return f.record(ctx, siteCall{edit: true, chatID: chatID, prompt: prompt})
}

func (f *fakeSites) record(ctx context.Context, c siteCall) (SiteResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

func (f *fakeSites) Calls() []siteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]siteCall(nil), f.calls...)
}

// fakeImages is an ImageGenerator returning queued results in order.
type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	results []*GeneratedImage
	err     error
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return &GeneratedImage{}, nil
	}
	img := f.results[0]
	f.results = f.results[1:]
	return img, nil
}

// fakeNotifier records every payload and signals each delivery on sent.
type fakeNotifier struct {
	mu       sync.Mutex
	urls     []string
	payloads []domain.CallbackPayload
	err      error
	sent     chan domain.CallbackPayload
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(chan domain.CallbackPayload, 16)}
}

func (f *fakeNotifier) Notify(ctx context.Context, callbackURL string, payload domain.CallbackPayload) error {
	f.mu.Lock()
	f.urls = append(f.urls, callbackURL)
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	f.sent <- payload
	return f.err
}

func (f *fakeNotifier) Payloads() []domain.CallbackPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CallbackPayload(nil), f.payloads...)
}

// fakeStorage is an in-memory storage.ObjectStorage.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) GetURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *fakeStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
