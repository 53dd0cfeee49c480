package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL         = "http://localhost:8000"
	defaultRequestTimeout = 30 * time.Second
)

// Config holds all configuration for the client
type Config struct {
	Environment    string
	APIURL         string
	StorePath      string
	RequestTimeout time.Duration
	LogLevel       string
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production we rely on the process environment only.
	if env != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: .env file couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:    env,
		APIURL:         firstNonEmpty(os.Getenv("KAIGI_API_URL"), os.Getenv("REACT_APP_API_URL"), defaultAPIURL),
		StorePath:      os.Getenv("KAIGI_STORE_PATH"),
		RequestTimeout: defaultRequestTimeout,
		LogLevel:       strings.ToLower(os.Getenv("LOG_LEVEL")),
	}

	if s := os.Getenv("KAIGI_REQUEST_TIMEOUT"); s != "" {
		secs, err := strconv.Atoi(s)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid KAIGI_REQUEST_TIMEOUT %q: must be a positive number of seconds", s)
		}
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}

	if cfg.StorePath == "" {
		path, err := DefaultStorePath()
		if err != nil {
			return nil, err
		}
		cfg.StorePath = path
	}

	return cfg, nil
}

// DefaultStorePath is where the client keeps its local storage when none is configured.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "kaiginote", "storage.db"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
