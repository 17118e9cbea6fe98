// cmd/server/main.go
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/agenciadigital/accessgate/internal/auth"
	"github.com/agenciadigital/accessgate/internal/config"
	"github.com/agenciadigital/accessgate/internal/httpapi"
	"github.com/agenciadigital/accessgate/internal/logging"
)

var (
	configPath = pflag.String("config", "configs/config.yaml", "Path to configuration file")
	version    = "1.0.0"
	buildTime  = "unknown"
)

func main() {
	pflag.Parse()

	printBanner()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Access.Secret == config.DefaultSecret {
		logger.Warn("using the built-in development secret; set ACCESS_TOKEN_SECRET")
	}

	opts := httpapi.Options{
		Tokens:   auth.NewTokenVerifier(cfg.Access.Secret),
		Licenses: auth.NewLicenseValidator(cfg.Access.Secret, cfg.Access.DemoLicense),
		Cookie: auth.CookiePolicy{
			Domain: cfg.Site.Host(),
			Secure: cfg.Site.Production(),
		},
		Logger:     logger,
		Version:    version,
		TrustProxy: cfg.RateLimit.TrustProxy,
	}
	if cfg.RateLimit.Enabled {
		opts.Limiter = auth.NewRateLimiter(ctx, cfg.RateLimit.Rate, cfg.RateLimit.Interval, cfg.RateLimit.Capacity)
		logger.Info("license rate limit enabled",
			"rate", cfg.RateLimit.Rate,
			"interval", cfg.RateLimit.Interval,
			"capacity", cfg.RateLimit.Capacity)
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      httpapi.NewServer(opts).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Server.TLSEnabled() {
		tlsConfig, err := createTLSConfig(cfg.Server.CertFile, cfg.Server.KeyFile)
		if err != nil {
			return err
		}
		server.TLSConfig = tlsConfig
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("access gate starting",
			"addr", server.Addr,
			"tls", cfg.Server.TLSEnabled(),
			"cookie_domain", opts.Cookie.Domain,
			"cookie_secure", opts.Cookie.Secure)

		var err error
		if server.TLSConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func printBanner() {
	banner := `
    ╔═══════════════════════════════════════════╗
    ║        Access Gate v%s                 ║
    ║     Magic links and license unlocks       ║
    ╚═══════════════════════════════════════════╝
    `
	fmt.Printf(banner, version)
	fmt.Printf("    Build: %s\n\n", buildTime)
}

func createTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}, nil
}
