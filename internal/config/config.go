// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/involv/sitekit/internal/site"
	"github.com/involv/sitekit/internal/util"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Content backends.
const (
	BackendSanity = "sanity"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Site          string `env:"SITEKIT_SITE" envDefault:"safeplay"`
	SiteProfile   string `env:"SITEKIT_SITE_PROFILE"` // Optional YAML file overriding the built-in profile
	SiteURL       string `env:"SITEKIT_SITE_URL"`     // Public base URL, defaults to the profile domain
	SessionSecret string `env:"SITEKIT_SESSION_SECRET,required"`
	ServerHost    string `env:"SITEKIT_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SITEKIT_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SITEKIT_ENV" envDefault:"development"`
	LogLevel      string `env:"SITEKIT_LOG_LEVEL" envDefault:"info"`
	DBPath        string `env:"SITEKIT_DB_PATH" envDefault:"./data/sitekit.db"`
	UploadsDir    string `env:"SITEKIT_UPLOADS_DIR" envDefault:"./uploads"`
	DoSeed        bool   `env:"SITEKIT_DO_SEED" envDefault:"false"`

	// Content source
	ContentBackend   string `env:"SITEKIT_CONTENT_BACKEND" envDefault:"sanity"`
	SanityProjectID  string `env:"SITEKIT_SANITY_PROJECT_ID"`
	SanityDataset    string `env:"SITEKIT_SANITY_DATASET" envDefault:"production"`
	SanityAPIVersion string `env:"SITEKIT_SANITY_API_VERSION" envDefault:"2024-01-01"`
	SanityToken      string `env:"SITEKIT_SANITY_TOKEN"`
	SanityUseCDN     bool   `env:"SITEKIT_SANITY_USE_CDN" envDefault:"true"`
	Revalidate       int    `env:"SITEKIT_REVALIDATE" envDefault:"300"` // Seconds before a cached fetch is stale

	// Cache configuration
	RedisURL     string `env:"SITEKIT_REDIS_URL"`                         // Optional Redis URL for shared caching
	CachePrefix  string `env:"SITEKIT_CACHE_PREFIX" envDefault:"sitekit:"` // Redis key prefix
	CacheMaxSize int    `env:"SITEKIT_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Contact form relay
	FormEndpoint string `env:"SITEKIT_FORM_ENDPOINT" envDefault:"https://formspree.io/f/mblaqoew"`
	FormCC       string `env:"SITEKIT_FORM_CC"`
	FormTimeout  int    `env:"SITEKIT_FORM_TIMEOUT" envDefault:"15"` // Seconds

	// Access gate
	AccessGate   bool   `env:"SITEKIT_ACCESS_GATE" envDefault:"false"`
	AccessCookie string `env:"SITEKIT_ACCESS_COOKIE" envDefault:"involv-auth"`
	LoginURL     string `env:"SITEKIT_LOGIN_URL" envDefault:"/login"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// RevalidateInterval returns the content staleness window.
func (c Config) RevalidateInterval() time.Duration {
	return time.Duration(c.Revalidate) * time.Second
}

// FormRelayTimeout returns the timeout applied to a single relay POST.
func (c Config) FormRelayTimeout() time.Duration {
	return time.Duration(c.FormTimeout) * time.Second
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("SITEKIT_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SITEKIT_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("SITEKIT_SESSION_SECRET is a known default value and must not be used")
		}
	}

	c.Site = strings.ToLower(strings.TrimSpace(c.Site))
	if c.Site == "" {
		return fmt.Errorf("SITEKIT_SITE must not be empty")
	}
	if c.SiteProfile != "" {
		if _, err := os.Stat(c.SiteProfile); err != nil {
			return fmt.Errorf("SITEKIT_SITE_PROFILE: %w", err)
		}
	} else if !site.IsKnown(c.Site) {
		return fmt.Errorf("SITEKIT_SITE %q is not a built-in site (%s); set SITEKIT_SITE_PROFILE for a custom one",
			c.Site, strings.Join(site.Known(), ", "))
	}

	switch c.ContentBackend {
	case BackendSanity:
		if c.SanityProjectID == "" {
			return fmt.Errorf("SITEKIT_SANITY_PROJECT_ID is required for the %q content backend", BackendSanity)
		}
	case BackendSQLite:
	default:
		return fmt.Errorf("SITEKIT_CONTENT_BACKEND must be %q or %q, got %q", BackendSanity, BackendSQLite, c.ContentBackend)
	}

	if c.Revalidate <= 0 {
		return fmt.Errorf("SITEKIT_REVALIDATE must be positive, got %d", c.Revalidate)
	}
	if c.FormTimeout <= 0 {
		return fmt.Errorf("SITEKIT_FORM_TIMEOUT must be positive, got %d", c.FormTimeout)
	}

	if err := util.ValidateRelayURL(c.FormEndpoint); err != nil {
		return fmt.Errorf("SITEKIT_FORM_ENDPOINT: %w", err)
	}

	if !strings.HasPrefix(c.LoginURL, "/") {
		return fmt.Errorf("SITEKIT_LOGIN_URL must be a local path, got %q", c.LoginURL)
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
