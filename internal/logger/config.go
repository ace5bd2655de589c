package logger

import (
	"io"
	"os"
	"strconv"
)

// EnvConfig holds logger settings read from LOG_* environment variables.
// Defaults depend on APP_ENV: local runs get debug text logs on stdout, everything
// else gets info JSON logs and a rotated file.
type EnvConfig struct {
	Level       string
	Format      string
	Output      io.Writer // overrides stdout and file output when set
	ServiceName string
	Environment string // local, dev, prod

	LogFile     string
	LogFileOnly bool

	// Rotation (lumberjack)
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// LoadFromEnv reads the logger configuration from the environment.
func LoadFromEnv() *EnvConfig {
	env := envOr("APP_ENV", "local", identity)
	level, format := "info", "json"
	if env == "local" {
		level, format = "debug", "text"
	}

	return &EnvConfig{
		Level:       envOr("LOG_LEVEL", level, identity),
		Format:      envOr("LOG_FORMAT", format, identity),
		ServiceName: envOr("SERVICE_NAME", "sitegen", identity),
		Environment: env,

		LogFile:     envOr("LOG_FILE", "logs/sitegen.log", identity),
		LogFileOnly: envOr("LOG_FILE_ONLY", false, strconv.ParseBool),

		MaxSize:    envOr("LOG_MAX_SIZE", 100, strconv.Atoi),
		MaxBackups: envOr("LOG_MAX_BACKUPS", 7, strconv.Atoi),
		MaxAge:     envOr("LOG_MAX_AGE", 30, strconv.Atoi),
		Compress:   envOr("LOG_COMPRESS", true, strconv.ParseBool),
	}
}

// FileOutput reports whether logs should also go to the rotated LogFile.
func (c *EnvConfig) FileOutput() bool {
	return c.Environment != "local" && c.LogFile != ""
}

// envOr parses key with parse, falling back to def when unset or malformed.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func identity(s string) (string, error) {
	return s, nil
}
