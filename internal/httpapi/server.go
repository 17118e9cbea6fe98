// Package httpapi exposes the magic-link and license unlock endpoints.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agenciadigital/accessgate/internal/auth"
)

// TokenVerifier checks magic-link tokens.
type TokenVerifier interface {
	Verify(token string) auth.Result
}

// LicenseChecker checks typed license keys.
type LicenseChecker interface {
	Verify(license string) bool
	IsDemo(license string) bool
}

// Limiter admits or rejects a request for a client key.
type Limiter interface {
	Allow(key string) bool
}

// Options wires a Server. Limiter and Logger are optional.
type Options struct {
	Tokens   TokenVerifier
	Licenses LicenseChecker
	Cookie   auth.CookiePolicy
	Limiter  Limiter
	Logger   *slog.Logger
	// TrustProxy keys the limiter on the last X-Forwarded-For hop.
	TrustProxy bool
	Version    string
	Now        func() time.Time
}

// Server holds the handler dependencies.
type Server struct {
	tokens     TokenVerifier
	licenses   LicenseChecker
	cookie     auth.CookiePolicy
	limiter    Limiter
	trustProxy bool
	logger     *slog.Logger
	version    string
	now        func() time.Time
	stats      *Stats
}

// NewServer creates a Server from opts.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		tokens:     opts.Tokens,
		licenses:   opts.Licenses,
		cookie:     opts.Cookie,
		limiter:    opts.Limiter,
		trustProxy: opts.TrustProxy,
		logger:     logger.With("module", "http", "layer", "adapter"),
		version:    opts.Version,
		now:        now,
		stats:      NewStats(now),
	}
}

// Stats exposes the unlock counters.
func (s *Server) Stats() *Stats {
	return s.stats
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Handle("/magic", allowMethod(http.MethodGet, http.HandlerFunc(s.handleMagic)))
	r.Handle("/license", allowMethod(http.MethodPost, s.rateLimitMiddleware(http.HandlerFunc(s.handleLicense))))

	return r
}
