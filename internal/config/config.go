// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	SettingsPath    string
	BaseURL         string
	UserAgent       string
	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
}

// Default values
const (
	defaultRefreshInterval = 30 * time.Minute
	defaultHTTPTimeout     = 30 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		SettingsPath:    getEnvString("SETTINGS_PATH", getDefaultSettingsPath()),
		BaseURL:         getEnvString("CURSOR_BASE_URL", DefaultBaseURL),
		UserAgent:       getEnvString("CURSOR_USER_AGENT", DefaultUserAgent),
		RefreshInterval: getEnvDuration("USAGE_REFRESH_INTERVAL", defaultRefreshInterval),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
	}

	// Ensure settings directory exists
	if err := ensureDir(filepath.Dir(cfg.SettingsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "cursor-dashboard-tui", ".env"),
			filepath.Join(home, ".cursor-dashboard", ".env"),
		)
	}

	return paths
}

// getDefaultSettingsPath returns the default path for the settings database.
func getDefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.db"
	}
	return filepath.Join(home, ".config", "cursor-dashboard-tui", "settings.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
