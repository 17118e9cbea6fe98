package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ACCESS_TOKEN_SECRET", "JWT_SECRET", "DEMO_LICENSE_KEY",
		"SITE_URL", "VITE_SITE_URL", "NODE_ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TRUST_PROXY", "")
	os.Unsetenv("TRUST_PROXY")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Access.Secret != DefaultSecret {
		t.Fatalf("secret = %q, want default", cfg.Access.Secret)
	}
	if cfg.Access.DemoLicense != DefaultDemoLicense {
		t.Fatalf("demo license = %q, want %q", cfg.Access.DemoLicense, DefaultDemoLicense)
	}
	if cfg.Server.Port != "8080" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Site.Host() != "" || cfg.Site.Production() {
		t.Fatalf("site should be unset by default: %+v", cfg.Site)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}
}

func TestLoadSecretPrecedence(t *testing.T) {
	path := writeConfig(t, "access:\n  secret: from-file\n")

	tests := []struct {
		name   string
		access string
		jwt    string
		want   string
	}{
		{name: "access token secret wins", access: "access", jwt: "jwt", want: "access"},
		{name: "jwt secret fallback", jwt: "jwt", want: "jwt"},
		{name: "file fallback", want: "from-file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ACCESS_TOKEN_SECRET", tt.access)
			t.Setenv("JWT_SECRET", tt.jwt)

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Access.Secret != tt.want {
				t.Fatalf("secret = %q, want %q", cfg.Access.Secret, tt.want)
			}
		})
	}
}

func TestLoadSiteFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_SITE_URL", "https://vite.example.com")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Site.Host(); got != "vite.example.com" {
		t.Fatalf("host = %q", got)
	}
	if !cfg.Site.Production() {
		t.Fatal("expected production")
	}

	t.Setenv("SITE_URL", "https://www.agencia.example:8443/landing")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Site.Host(); got != "www.agencia.example" {
		t.Fatalf("SITE_URL should win, host = %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: "9000"
  read_timeout: 5s
access:
  demo_license: DEMO-XYZ
rate_limit:
  enabled: true
  rate: 2
  interval: 30s
  capacity: 3
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Access.DemoLicense != "DEMO-XYZ" {
		t.Fatalf("demo license = %q", cfg.Access.DemoLicense)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Capacity != 3 || cfg.RateLimit.Interval != 30*time.Second {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadTrustProxy(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "rate_limit:\n  trust_proxy: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.RateLimit.TrustProxy {
		t.Fatal("trust_proxy from file not applied")
	}

	t.Setenv("TRUST_PROXY", "false")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RateLimit.TrustProxy {
		t.Fatal("TRUST_PROXY=false should override the file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	if _, err := Load(missing); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := LoadOptional(missing); err != nil {
		t.Fatalf("optional load: %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "half tls", mutate: func(c *Config) { c.Server.CertFile = "cert.pem" }, want: ErrIncompleteTLS},
		{name: "bad site", mutate: func(c *Config) { c.Site.URL = "not a url" }, want: ErrInvalidSiteURL},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, want: ErrInvalidLogFormat},
		{name: "bad rate limit", mutate: func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Capacity = 0
		}, want: ErrInvalidRateLimit},
		{name: "empty secret", mutate: func(c *Config) { c.Access.Secret = "" }, want: ErrMissingSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("validate = %v, want %v", err, tt.want)
			}
		})
	}
}
