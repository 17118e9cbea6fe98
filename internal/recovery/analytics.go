package recovery

import (
	"context"
	"log/slog"
	"time"
)

// Analytics event names understood by the site's event sink.
const (
	EventMagicSuccess       = "access_magic_success"
	EventMagicFailure       = "access_magic_failure"
	EventLicenseSuccess     = "access_license_success"
	EventLicenseDemoSuccess = "access_license_demo_success"
	EventLicenseFailure     = "access_license_failure"
)

// Trust modes attached to every event.
const (
	// ModeServer means the server made the decision.
	ModeServer = "server"
	// ModeDemoFallback means the server was unreachable and the local
	// pattern match unlocked content. This is degraded trust.
	ModeDemoFallback = "demo-fallback"
	// ModeNetwork means the server was unreachable and nothing unlocked.
	ModeNetwork = "network"
	// ModeLocal means the input was rejected before any call.
	ModeLocal = "local"
)

// Event is one analytics record.
type Event struct {
	Name string
	Mode string
	At   time.Time
}

// EventSink receives analytics events. Implementations must not block.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// LogSink writes events as structured log records.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("module", "analytics")}
}

func (s *LogSink) Emit(ctx context.Context, event Event) {
	s.logger.InfoContext(ctx, "analytics event",
		"event", event.Name,
		"mode", event.Mode,
		"at", event.At.UTC().Format(time.RFC3339),
	)
}

type discardSink struct{}

func (discardSink) Emit(context.Context, Event) {}
