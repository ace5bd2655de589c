package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Site     SiteConfig     `mapstructure:"site"`
	Images   ImagesConfig   `mapstructure:"images"`
	Callback CallbackConfig `mapstructure:"callback"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Store    StoreConfig    `mapstructure:"store"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// AuthConfig holds the shared secret expected in the X-Api-Key header.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type CallbackConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type QueueConfig struct {
	Size int `mapstructure:"size"`
}

// StoreConfig selects the job record store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, sqlite, postgres
	Path   string `mapstructure:"path"`   // sqlite file
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

// StorageConfig configures the S3-compatible bucket used to host generated images.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`
}

// Enabled reports whether enough settings are present to build a storage client.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// ConnString returns the connection string for the configured store driver.
func (s StoreConfig) ConnString() string {
	if s.Driver == "postgres" {
		return s.DSN
	}
	return s.Path
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.api_key", "API_KEY")
	v.BindEnv("site.api_key", "V0_API_KEY")
	v.BindEnv("site.base_url", "V0_BASE_URL")
	v.BindEnv("images.api_key", "OPENAI_API_KEY")
	v.BindEnv("images.base_url", "OPENAI_BASE_URL")
	v.BindEnv("images.model", "IMAGE_MODEL")
	v.BindEnv("images.enabled", "IMAGES_ENABLED")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.dsn", "DATABASE_URL")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.bucket", "S3_BUCKET")
	v.BindEnv("storage.public_url", "S3_PUBLIC_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("site.base_url", "https://api.v0.dev/v1")
	v.SetDefault("site.timeout", 5*time.Minute)
	v.SetDefault("images.enabled", true)
	v.SetDefault("images.base_url", "https://api.openai.com/v1")
	v.SetDefault("images.model", "gpt-image-1")
	v.SetDefault("images.size", "1536x1024")
	v.SetDefault("images.timeout", 2*time.Minute)
	v.SetDefault("callback.timeout", 15*time.Second)
	v.SetDefault("queue.size", 256)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "./data/jobs.db")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.prefix", "sites")
}
