package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SiteGenerator creates or edits a generated website through a chat-style API.
type SiteGenerator interface {
	// CreateSite starts a new chat with prompt and returns the raw response.
	CreateSite(ctx context.Context, prompt string) (SiteResponse, error)

	// EditSite sends prompt to the existing chat chatID and returns the raw response.
	EditSite(ctx context.Context, chatID, prompt string) (SiteResponse, error)
}

// SiteClient talks to a v0-style Platform API.
type SiteClient struct {
	client  *resty.Client
	baseURL string
}

// SiteClientConfig holds configuration for the site generation client.
type SiteClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type siteMessageRequest struct {
	Message string `json:"message"`
}

type siteErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewSiteClient creates a new site generation client.
// Parameters:
//   - cfg: API key, base URL and per-call timeout.
//
// Returns:
//   - *SiteClient: initialized client.
func NewSiteClient(cfg *SiteClientConfig) *SiteClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.v0.dev/v1"
	}

	return &SiteClient{
		client:  client,
		baseURL: baseURL,
	}
}

// CreateSite handles POST /chats.
func (c *SiteClient) CreateSite(ctx context.Context, prompt string) (SiteResponse, error) {
	return c.send(ctx, c.baseURL+"/chats", prompt)
}

// EditSite handles POST /chats/{chatID}/messages.
func (c *SiteClient) EditSite(ctx context.Context, chatID, prompt string) (SiteResponse, error) {
	endpoint := fmt.Sprintf("%s/chats/%s/messages", c.baseURL, url.PathEscape(chatID))
	return c.send(ctx, endpoint, prompt)
}

func (c *SiteClient) send(ctx context.Context, endpoint, prompt string) (SiteResponse, error) {
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(siteMessageRequest{Message: prompt}).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call site API: %w", err)
	}

	if !httpResp.IsSuccess() {
		errorMsg := fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		var apiErr siteErrorResponse
		if json.Unmarshal(httpResp.Body(), &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), apiErr.Error.Message)
		}
		return nil, fmt.Errorf("site API returned error: %s", errorMsg)
	}

	var resp SiteResponse
	if err := json.Unmarshal(httpResp.Body(), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode site API response: %w", err)
	}
	return resp, nil
}
