package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = 8080
	defaultLimit          = 200
	defaultMaxUploadBytes = 10 << 20 // 10 MiB CSV uploads
)

// Config holds environment-driven settings shared by the REST API and the
// ingest CLI.
type Config struct {
	DatabaseURL    string
	Port           int
	BearerToken    string
	DefaultLimit   int
	MaxUploadBytes int64
	StandardsPath  string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:           defaultPort,
		DefaultLimit:   defaultLimit,
		MaxUploadBytes: defaultMaxUploadBytes,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if limitStr := os.Getenv("API_DEFAULT_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			cfg.DefaultLimit = limit
		} else {
			return cfg, fmt.Errorf("invalid API_DEFAULT_LIMIT: %s", limitStr)
		}
	}

	if maxStr := os.Getenv("API_MAX_UPLOAD_BYTES"); maxStr != "" {
		if v, err := strconv.ParseInt(maxStr, 10, 64); err == nil && v > 0 {
			cfg.MaxUploadBytes = v
		} else {
			return cfg, fmt.Errorf("invalid API_MAX_UPLOAD_BYTES: %s", maxStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")
	cfg.StandardsPath = strings.TrimSpace(os.Getenv("STANDARDS_PATH"))

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
