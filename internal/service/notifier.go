package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/sitegen/internal/domain"
)

// Notifier delivers a terminal job outcome to the caller.
type Notifier interface {
	Notify(ctx context.Context, callbackURL string, payload domain.CallbackPayload) error
}

// CallbackNotifier POSTs the outcome as JSON. It makes exactly one attempt.
type CallbackNotifier struct {
	client *resty.Client
}

// NewCallbackNotifier creates a notifier whose requests are bounded by timeout.
func NewCallbackNotifier(timeout time.Duration) *CallbackNotifier {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &CallbackNotifier{client: client}
}

// Notify sends payload to callbackURL. Any non-2xx response is an error.
func (n *CallbackNotifier) Notify(ctx context.Context, callbackURL string, payload domain.CallbackPayload) error {
	httpResp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(callbackURL)
	if err != nil {
		return fmt.Errorf("failed to deliver callback: %w", err)
	}
	if !httpResp.IsSuccess() {
		return fmt.Errorf("callback returned HTTP %d", httpResp.StatusCode())
	}
	return nil
}
