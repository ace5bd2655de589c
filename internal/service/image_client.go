package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// GeneratedImage is one image returned by the image generator.
// Exactly one of URL or Data is expected to be set.
type GeneratedImage struct {
	URL  string
	Data []byte
}

// ImageGenerator produces an image from a text prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

// ImageClient handles image generation through an OpenAI-compatible Images API.
type ImageClient struct {
	client   *resty.Client
	model    string
	size     string
	endpoint string
}

// ImageClientConfig holds configuration for the image generation client.
type ImageClientConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Size    string
	Timeout time.Duration
}

// OpenAI-compatible Images API request/response structures
type imageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewImageClient creates a new image generation client.
// Parameters:
//   - cfg: model, API key, base URL, image size and per-call timeout.
//
// Returns:
//   - *ImageClient: initialized client.
func NewImageClient(cfg *ImageClientConfig) *ImageClient {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &ImageClient{
		client:   client,
		model:    cfg.Model,
		size:     cfg.Size,
		endpoint: baseURL + "/images/generations",
	}
}

// GetModel returns the model name being used.
func (c *ImageClient) GetModel() string {
	return c.model
}

// GenerateImage requests a single image for prompt.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - prompt: text description of the image.
//
// Returns:
//   - *GeneratedImage: hosted URL or decoded image bytes.
//   - error: non-nil if the API call fails or returns no image.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	req := imageGenerationRequest{
		Model:  c.model,
		Prompt: prompt,
		N:      1,
		Size:   c.size,
	}

	var resp imageGenerationResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call image API: %w", err)
	}

	if !httpResp.IsSuccess() {
		errorMsg := fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("image API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("image API error: %s", resp.Error.Message)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoUsableImage
	}

	item := resp.Data[0]
	if url := strings.TrimSpace(item.URL); url != "" {
		return &GeneratedImage{URL: url}, nil
	}
	if item.B64JSON == "" {
		return nil, ErrNoUsableImage
	}

	data, err := base64.StdEncoding.DecodeString(item.B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return &GeneratedImage{Data: data}, nil
}
