// Package config loads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/janisto/huma-shared-libs/internal/platform/strutil"
)

const (
	defaultPort             = "8080"
	defaultAPIPrefix        = "/v1"
	defaultLogLevel         = "info"
	defaultClientTimeout    = 10 * time.Second
	defaultClientMaxRetries = 2
	defaultEnvFile          = ".env"
)

// Config holds the server settings.
type Config struct {
	Port      string
	APIPrefix string
	LogLevel  string
	// ProjectID enables Cloud Trace correlation in logs when set.
	ProjectID   string
	CORSOrigins []string

	// UpstreamBaseURL switches the item catalog to a remote backend. Empty
	// means the in-memory catalog.
	UpstreamBaseURL string
	// UpstreamToken is sent as a bearer token to the catalog backend.
	UpstreamToken        string
	HTTPClientTimeout    time.Duration
	HTTPClientMaxRetries int
	ValidateUpstream     bool
}

// Load reads ENV_PATH (default ".env") if present, then the environment.
// Existing environment variables win over the file. All invalid values are
// reported together.
func Load() (*Config, error) {
	path := strutil.FirstNonEmpty(os.Getenv("ENV_PATH"), defaultEnvFile)
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from lookup, which is usually os.Getenv.
func FromEnv(lookup func(string) string) (*Config, error) {
	var errs []error
	get := func(key, def string) string {
		return strutil.FirstNonEmpty(strings.TrimSpace(lookup(key)), def)
	}

	cfg := &Config{
		Port:      get("PORT", defaultPort),
		APIPrefix: "/" + strings.Trim(get("API_PREFIX", defaultAPIPrefix), "/"),
		LogLevel:  strings.ToLower(get("LOG_LEVEL", defaultLogLevel)),
		ProjectID: strutil.FirstNonEmpty(
			lookup("GOOGLE_CLOUD_PROJECT"),
			lookup("GCP_PROJECT"),
			lookup("PROJECT_ID"),
		),
		CORSOrigins:          strutil.SplitList(lookup("CORS_ORIGINS")),
		UpstreamBaseURL:      strings.TrimRight(get("UPSTREAM_BASE_URL", ""), "/"),
		UpstreamToken:        strings.TrimSpace(lookup("UPSTREAM_TOKEN")),
		HTTPClientTimeout:    defaultClientTimeout,
		HTTPClientMaxRetries: defaultClientMaxRetries,
	}
	if cfg.APIPrefix == "/" {
		cfg.APIPrefix = ""
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %q", cfg.Port))
	}

	if cfg.UpstreamBaseURL != "" {
		if u, err := url.Parse(cfg.UpstreamBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("UPSTREAM_BASE_URL must be an absolute URL, got %q", cfg.UpstreamBaseURL))
		}
	}

	if v := get("HTTP_CLIENT_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("HTTP_CLIENT_TIMEOUT must be a positive duration, got %q", v))
		} else {
			cfg.HTTPClientTimeout = d
		}
	}

	if v := get("HTTP_CLIENT_MAX_RETRIES", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("HTTP_CLIENT_MAX_RETRIES must be a non-negative integer, got %q", v))
		} else {
			cfg.HTTPClientMaxRetries = n
		}
	}

	if v := get("VALIDATE_UPSTREAM", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("VALIDATE_UPSTREAM must be a boolean, got %q", v))
		}
		cfg.ValidateUpstream = b
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}
