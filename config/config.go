package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	WSBaseURL   string
	HTTPTimeout int // seconds
	PageSize    int // messages per history page
}

func Load() *Config {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  "http://localhost:5000",
		WSBaseURL:   "ws://localhost:5000",
		HTTPTimeout: 15,
		PageSize:    100,
	}

	if url := os.Getenv("DEVCONNECT_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}

	if url := os.Getenv("DEVCONNECT_WS_URL"); url != "" {
		cfg.WSBaseURL = url
	}

	if timeoutStr := os.Getenv("DEVCONNECT_HTTP_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil {
			cfg.HTTPTimeout = timeout
		}
	}

	if sizeStr := os.Getenv("DEVCONNECT_PAGE_SIZE"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			cfg.PageSize = size
		}
	}

	return cfg
}
