// Package config loads application configuration from the environment,
// with an optional .env file for local runs.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application settings
type Config struct {
	// ListenAddr is the HTTP listen address
	ListenAddr string

	// Workers bounds the validation worker pool; 0 means runtime.NumCPU
	Workers int

	// EventBuffer is the per-session dispatcher queue size
	EventBuffer int

	// MaxUploadBytes caps the size of an uploaded batch or feed body
	MaxUploadBytes int64

	// ShutdownTimeout is the grace period for in-flight requests on exit
	ShutdownTimeout time.Duration

	// APIKey, when set, is required in the X-API-Key header of session routes
	APIKey string

	// LogLevel is debug, info, warn or error
	LogLevel string

	// LogFormat is text or json
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		Workers:         getenvInt("VALIDATION_WORKERS", 0),
		EventBuffer:     getenvInt("EVENT_BUFFER", 64),
		MaxUploadBytes:  getenvInt64("MAX_UPLOAD_BYTES", 10<<20),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		APIKey:          os.Getenv("CATALOG_API_KEY"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "text"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseInt(v, 10, 64); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if out, err := time.ParseDuration(v); err == nil {
			return out
		}
	}
	return def
}
