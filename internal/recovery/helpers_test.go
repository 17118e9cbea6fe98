package recovery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/agenciadigital/accessgate/internal/auth"
	"github.com/agenciadigital/accessgate/internal/httpapi"
)

const (
	testSecret = "recovery-secret"
	demoKey    = "LICENSE-DEMO-2025"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newUnlockServer runs the real unlock endpoints behind an httptest server.
func newUnlockServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httpapi.NewServer(httpapi.Options{
		Tokens:   auth.NewTokenVerifier(testSecret),
		Licenses: auth.NewLicenseValidator(testSecret, demoKey),
		Logger:   quietLogger(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// deadServerURL returns the URL of a server that is already closed.
func deadServerURL(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	return url
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name+"/"+e.Mode)
	}
	return out
}
