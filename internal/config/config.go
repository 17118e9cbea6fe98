package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSecret is used when neither ACCESS_TOKEN_SECRET nor JWT_SECRET
	// nor the config file provide one.
	DefaultSecret = "dev-access-secret-change-me"

	// DefaultDemoLicense is the license key that always unlocks.
	DefaultDemoLicense = "LICENSE-DEMO-2025"

	// ProductionEnvironment marks deployments that must emit Secure cookies.
	ProductionEnvironment = "production"
)

// Config represents the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Access    AccessConfig    `yaml:"access"`
	Site      SiteConfig      `yaml:"site"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains server-specific settings
type ServerConfig struct {
	Port         string        `yaml:"port"`
	Host         string        `yaml:"host"`
	CertFile     string        `yaml:"cert_file"`
	KeyFile      string        `yaml:"key_file"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// TLSEnabled reports whether both certificate and key are configured.
func (s ServerConfig) TLSEnabled() bool {
	return s.CertFile != "" && s.KeyFile != ""
}

// AccessConfig holds the secrets used by the token and license verifiers.
type AccessConfig struct {
	Secret      string `yaml:"secret"`
	DemoLicense string `yaml:"demo_license"`
}

// SiteConfig describes the public site the unlock cookie is scoped to.
type SiteConfig struct {
	URL         string `yaml:"url"`
	Environment string `yaml:"environment"`
}

// Host returns the hostname of the configured site URL, or "" when the URL
// is unset or unparseable.
func (s SiteConfig) Host() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Production reports whether the site runs in a production environment.
func (s SiteConfig) Production() bool {
	return strings.EqualFold(strings.TrimSpace(s.Environment), ProductionEnvironment)
}

// RateLimitConfig bounds license attempts per client.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Rate     int           `yaml:"rate"`
	Interval time.Duration `yaml:"interval"`
	Capacity int           `yaml:"capacity"`
	// TrustProxy makes the limiter key on the last X-Forwarded-For hop.
	// Enable only behind a reverse proxy that appends it.
	TrustProxy bool `yaml:"trust_proxy"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envOverrides mirrors the environment variables the deployment platform sets.
type envOverrides struct {
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET"`
	JWTSecret         string `env:"JWT_SECRET"`
	DemoLicenseKey    string `env:"DEMO_LICENSE_KEY"`
	SiteURL           string `env:"SITE_URL"`
	ViteSiteURL       string `env:"VITE_SITE_URL"`
	NodeEnv           string `env:"NODE_ENV"`
	Port              string `env:"PORT"`
	LogLevel          string `env:"LOG_LEVEL"`
	LogFormat         string `env:"LOG_FORMAT"`
	TrustProxy        *bool  `env:"TRUST_PROXY"`
}

// Load reads configuration from an optional YAML file and environment
// variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var raw envOverrides
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyEnv(raw)
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadOptional behaves like Load but tolerates a missing file.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

func (c *Config) applyEnv(raw envOverrides) {
	switch {
	case raw.AccessTokenSecret != "":
		c.Access.Secret = raw.AccessTokenSecret
	case raw.JWTSecret != "":
		c.Access.Secret = raw.JWTSecret
	}
	if raw.DemoLicenseKey != "" {
		c.Access.DemoLicense = raw.DemoLicenseKey
	}

	switch {
	case raw.SiteURL != "":
		c.Site.URL = raw.SiteURL
	case raw.ViteSiteURL != "":
		c.Site.URL = raw.ViteSiteURL
	}
	if raw.NodeEnv != "" {
		c.Site.Environment = raw.NodeEnv
	}

	if raw.Port != "" {
		c.Server.Port = raw.Port
	}
	if raw.LogLevel != "" {
		c.Logging.Level = raw.LogLevel
	}
	if raw.LogFormat != "" {
		c.Logging.Format = raw.LogFormat
	}
	if raw.TrustProxy != nil {
		c.RateLimit.TrustProxy = *raw.TrustProxy
	}
}

func (c *Config) applyDefaults() {
	if c.Access.Secret == "" {
		c.Access.Secret = DefaultSecret
	}
	if c.Access.DemoLicense == "" {
		c.Access.DemoLicense = DefaultDemoLicense
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}

	if c.RateLimit.Rate == 0 {
		c.RateLimit.Rate = 5
	}
	if c.RateLimit.Interval == 0 {
		c.RateLimit.Interval = time.Minute
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Access.Secret == "" {
		return ErrMissingSecret
	}
	if c.Access.DemoLicense == "" {
		return ErrMissingDemoLicense
	}
	if (c.Server.CertFile == "") != (c.Server.KeyFile == "") {
		return ErrIncompleteTLS
	}
	if c.Site.URL != "" && c.Site.Host() == "" {
		return ErrInvalidSiteURL
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate < 0 || c.RateLimit.Capacity <= 0 || c.RateLimit.Interval <= 0) {
		return ErrInvalidRateLimit
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return ErrInvalidLogFormat
	}
	return nil
}

// Errors
var (
	ErrMissingSecret      = &ConfigError{"access secret is required"}
	ErrMissingDemoLicense = &ConfigError{"demo license is required"}
	ErrIncompleteTLS      = &ConfigError{"TLS requires both cert_file and key_file"}
	ErrInvalidSiteURL     = &ConfigError{"site url must include a host"}
	ErrInvalidRateLimit   = &ConfigError{"rate limit needs positive capacity and interval"}
	ErrInvalidLogFormat   = &ConfigError{"logging format must be json or text"}
)

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Message
}
