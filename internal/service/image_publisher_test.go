package service

import (
	"context"
	"errors"
	"testing"
)

func TestImagePublisherPublish(t *testing.T) {
	store := newFakeStorage()
	p := NewImagePublisher(store, "sites")
	ctx := context.Background()

	url, err := p.Publish(ctx, "job_1", "hero", &GeneratedImage{URL: "https://img.test/x.png"})
	if err != nil || url != "https://img.test/x.png" {
		t.Fatalf("expected passthrough url, got %q, %v", url, err)
	}
	if len(store.objects) != 0 {
		t.Errorf("url results must not be uploaded")
	}

	url, err = p.Publish(ctx, "job_1", "hero", &GeneratedImage{Data: pngBytes(t)})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if url != "https://cdn.test/sites/job_1/hero.png" {
		t.Errorf("unexpected url %q", url)
	}
	if store.types["sites/job_1/hero.png"] != "image/png" {
		t.Errorf("unexpected content types: %v", store.types)
	}
}

func TestImagePublisherRejects(t *testing.T) {
	tests := []struct {
		name string
		img  *GeneratedImage
	}{
		{name: "nil image", img: nil},
		{name: "empty image", img: &GeneratedImage{}},
		{name: "not an image", img: &GeneratedImage{Data: []byte("hello")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStorage()
			p := NewImagePublisher(store, "sites")
			_, err := p.Publish(context.Background(), "job_1", "hero", tt.img)
			if !errors.Is(err, ErrNoUsableImage) {
				t.Errorf("expected ErrNoUsableImage, got %v", err)
			}
			if len(store.objects) != 0 {
				t.Errorf("rejected image must not be uploaded")
			}
		})
	}
}

func TestImagePublisherWithoutStorage(t *testing.T) {
	p := NewImagePublisher(nil, "sites")
	_, err := p.Publish(context.Background(), "job_1", "hero", &GeneratedImage{Data: pngBytes(t)})
	if !errors.Is(err, ErrNoImageStorage) {
		t.Errorf("expected ErrNoImageStorage, got %v", err)
	}
}
