package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingCredential is returned when a collaborator API key is not configured.
var ErrMissingCredential = errors.New("missing collaborator credential")

// SiteConfig defines the site-generation (chat) collaborator.
type SiteConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ImagesConfig defines the image-generation collaborator.
// When Enabled is false the image step is skipped entirely.
type ImagesConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Size    string        `mapstructure:"size"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// InlineOnly reports whether the configured model returns images as base64 data only,
// which must be uploaded to object storage before a site can reference them.
func (c ImagesConfig) InlineOnly() bool {
	return strings.HasPrefix(strings.ToLower(c.Model), "gpt-image")
}

// ValidateCredentials checks that every collaborator the job pipeline will call has an API key.
// It is evaluated per request so a misconfigured server fails closed with a 500.
func (c *Config) ValidateCredentials() error {
	if c.Site.APIKey == "" {
		return fmt.Errorf("%w: site api_key (V0_API_KEY)", ErrMissingCredential)
	}
	if c.Images.Enabled && c.Images.APIKey == "" {
		return fmt.Errorf("%w: images api_key (OPENAI_API_KEY)", ErrMissingCredential)
	}
	return nil
}

// Validate checks settings that must be sane at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Queue.Size <= 0 {
		return fmt.Errorf("queue.size must be positive")
	}
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}
	if c.Images.Enabled && c.Images.Model == "" {
		return fmt.Errorf("images.model is required when images are enabled")
	}
	if c.Images.Enabled && c.Images.InlineOnly() && !c.Storage.Enabled() {
		return fmt.Errorf("images.model %q returns inline image data and needs storage (S3_ENDPOINT, S3_BUCKET); configure storage or set IMAGES_ENABLED=false", c.Images.Model)
	}
	return nil
}
