// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	// Collaborator base URLs.
	AuthAPIURL     string // identity provider, security-challenge store, notifications
	RelayAPIURL    string // conversation relay backend
	FeedbackAPIURL string // feedback storage/scoring
	LoginLogURL    string // dashboard login-event collector, best-effort

	HTTPTimeout  time.Duration // outbound collaborator calls
	PollInterval time.Duration // conversation poll cadence
	AttemptTTL   time.Duration // abandoned auth attempt reclamation
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/quickdatapro.db"),
		AuthAPIURL:     getEnv("AUTH_API_URL", ""),
		RelayAPIURL:    getEnv("RELAY_API_URL", ""),
		FeedbackAPIURL: getEnv("FEEDBACK_API_URL", ""),
		LoginLogURL:    getEnv("LOGIN_LOG_URL", ""),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		PollInterval:   getEnvDuration("POLL_INTERVAL", 20*time.Second),
		AttemptTTL:     getEnvDuration("ATTEMPT_TTL", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.AuthAPIURL == "" {
		return fmt.Errorf("AUTH_API_URL cannot be empty")
	}
	if c.RelayAPIURL == "" {
		return fmt.Errorf("RELAY_API_URL cannot be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be > 0")
	}
	if c.AttemptTTL <= 0 {
		return fmt.Errorf("ATTEMPT_TTL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
		return d
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
