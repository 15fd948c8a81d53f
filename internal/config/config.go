// Package config provides configuration loading and validation for the scraper service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds service-level configuration loaded from the environment.
// It is constructed per process and passed explicitly; there is no
// process-wide singleton.
type Config struct {
	Port         int
	DatabaseURL  string
	GeminiAPIKey string

	LogLevel  string
	LogPretty bool

	Scraper ScraperConfig
}

// ScraperConfig holds everything one scrape job needs. A copy is handed to
// each job, so concurrent jobs never share mutable configuration.
type ScraperConfig struct {
	Email    string
	Password string

	// ProfileDir is the persistent browser profile directory. Reusing it
	// across jobs retains login cookies so most jobs skip the login form.
	// Concurrent writers would corrupt it, so jobs sharing a dir are
	// serialized by the orchestrator.
	ProfileDir string
	Headless   bool

	// OverallTimeout is the only fatal deadline; the finer-grain budgets
	// below are recoverable within a job.
	OverallTimeout  time.Duration
	NavigateTimeout time.Duration
	NavigateSettle  time.Duration
	SelectorWait    time.Duration
	ScrollSettle    time.Duration

	// SaturationLimit stops scrolling once this many articles are visible.
	SaturationLimit int
}

// Load reads configuration from environment variables, applying defaults
// for everything except the database URL.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         envInt("PORT", 8000),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LogLevel:     envDefault("LOG_LEVEL", "info"),
		LogPretty:    envBool("LOG_PRETTY", false),
		Scraper: ScraperConfig{
			Email:           os.Getenv("LINKEDIN_EMAIL"),
			Password:        os.Getenv("LINKEDIN_PASSWORD"),
			ProfileDir:      envDefault("BROWSER_PROFILE_DIR", defaultProfileDir()),
			Headless:        envBool("BROWSER_HEADLESS", true),
			OverallTimeout:  envDuration("SCRAPE_TIMEOUT", 120*time.Second),
			NavigateTimeout: envDuration("NAVIGATE_TIMEOUT", 30*time.Second),
			NavigateSettle:  envDuration("NAVIGATE_SETTLE", 3*time.Second),
			SelectorWait:    envDuration("SELECTOR_WAIT", 10*time.Second),
			ScrollSettle:    envDuration("SCROLL_SETTLE", 1200*time.Millisecond),
			SaturationLimit: envInt("SATURATION_LIMIT", 200),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values. Credentials are
// deliberately not required here: a still-valid persistent session can carry
// a job without them, and their absence is reported per job.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: invalid port %d", c.Port)
	}
	if c.Scraper.OverallTimeout <= 0 {
		return fmt.Errorf("config error: SCRAPE_TIMEOUT must be positive")
	}
	if c.Scraper.NavigateTimeout >= c.Scraper.OverallTimeout {
		return fmt.Errorf("config error: NAVIGATE_TIMEOUT must be shorter than SCRAPE_TIMEOUT")
	}
	if c.Scraper.SaturationLimit <= 0 {
		return fmt.Errorf("config error: SATURATION_LIMIT must be positive")
	}
	return nil
}

// HasCredentials reports whether both login credential fields are present.
func (s ScraperConfig) HasCredentials() bool {
	return s.Email != "" && s.Password != ""
}

func defaultProfileDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "pitch-super-app", "browser-profile")
	}
	return filepath.Join(cache, "pitch-super-app", "browser-profile")
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
