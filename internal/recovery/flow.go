// Package recovery drives self-service access recovery from the client side:
// a magic-link token from the page URL or a typed license key is checked
// against the unlock service, and the outcome is persisted for the gated UI.
package recovery

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// State is the recovery state for one page load.
type State int32

const (
	StateIdle State = iota
	StateVerifyingToken
	StateTokenRejected
	StateVerifyingLicense
	StateLicenseRejected
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerifyingToken:
		return "verifying_token"
	case StateTokenRejected:
		return "token_rejected"
	case StateVerifyingLicense:
		return "verifying_license"
	case StateLicenseRejected:
		return "license_rejected"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Verifier is the unlock service as seen from the client.
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (Decision, error)
	VerifyLicense(ctx context.Context, license string) (Decision, error)
}

// FlagWriter persists the unlock flag.
type FlagWriter interface {
	MarkUnlocked(ctx context.Context) error
}

// Outcome is what the UI renders after a transition. Err is set when the
// flag could not be persisted; the state is still Unlocked in that case.
type Outcome struct {
	State   State
	Mode    string
	Message string
	Err     error
}

// Flow is the recovery state machine. Attempts are serialized, so a token
// check and a license submission never interleave.
type Flow struct {
	op    sync.Mutex
	state atomic.Int32

	verifier Verifier
	flags    FlagWriter
	sink     EventSink
	messages *Messages
	fallback func(string) bool
	logger   *slog.Logger
	now      func() time.Time
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithEventSink sets the analytics sink.
func WithEventSink(sink EventSink) FlowOption {
	return func(f *Flow) { f.sink = sink }
}

// WithMessages sets the language of outcome messages.
func WithMessages(m *Messages) FlowOption {
	return func(f *Flow) { f.messages = m }
}

// WithFallback replaces the offline license predicate. Passing nil disables
// the degraded-trust path entirely.
func WithFallback(match func(string) bool) FlowOption {
	return func(f *Flow) { f.fallback = match }
}

// WithLogger sets the logger for internal diagnostics.
func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) { f.logger = logger }
}

// NewFlow creates a flow in the Idle state.
func NewFlow(verifier Verifier, flags FlagWriter, opts ...FlowOption) *Flow {
	f := &Flow{
		verifier: verifier,
		flags:    flags,
		sink:     discardSink{},
		messages: NewMessages(""),
		fallback: MatchesFallback,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.sink == nil {
		f.sink = discardSink{}
	}
	f.logger = f.logger.With("module", "recovery")
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	return State(f.state.Load())
}

func (f *Flow) setState(s State) {
	f.state.Store(int32(s))
}

// Start runs the magic-link check when query carries a token. It only acts
// from Idle; later calls report the current state.
func (f *Flow) Start(ctx context.Context, query url.Values) Outcome {
	f.op.Lock()
	defer f.op.Unlock()

	if f.State() != StateIdle {
		return Outcome{State: f.State()}
	}
	token := query.Get("token")
	if token == "" {
		return Outcome{State: StateIdle}
	}

	f.setState(StateVerifyingToken)
	decision, err := f.verifier.VerifyToken(ctx, token)
	switch {
	case err != nil:
		// No local fallback for tokens: a client cannot forge a signed link.
		f.logger.WarnContext(ctx, "magic link check failed", "operation", "verify_token", "error", err)
		return f.reject(ctx, StateTokenRejected, EventMagicFailure, ModeNetwork, MsgTokenFailure)
	case !decision.Unlocked:
		f.logger.InfoContext(ctx, "magic link rejected",
			"operation", "verify_token", "status_code", decision.Status, "reason", decision.Reason)
		return f.reject(ctx, StateTokenRejected, EventMagicFailure, ModeServer, MsgTokenFailure)
	default:
		return f.unlock(ctx, EventMagicSuccess, ModeServer, MsgTokenSuccess)
	}
}

// SubmitLicense checks a typed license. It is accepted from Idle and both
// rejected states; once Unlocked it is a no-op.
func (f *Flow) SubmitLicense(ctx context.Context, license string) Outcome {
	f.op.Lock()
	defer f.op.Unlock()

	if f.State() == StateUnlocked {
		return Outcome{State: StateUnlocked, Message: f.messages.Text(MsgAlreadyUnlocked)}
	}
	license = strings.TrimSpace(license)
	if license == "" {
		return f.reject(ctx, StateLicenseRejected, EventLicenseFailure, ModeLocal, MsgLicenseMissing)
	}

	f.setState(StateVerifyingLicense)
	decision, err := f.verifier.VerifyLicense(ctx, license)
	switch {
	case err != nil:
		f.logger.WarnContext(ctx, "license check failed", "operation", "verify_license", "error", err)
		if f.fallback != nil && f.fallback(license) {
			return f.unlock(ctx, EventLicenseDemoSuccess, ModeDemoFallback, MsgLicenseDemoSuccess)
		}
		return f.reject(ctx, StateLicenseRejected, EventLicenseFailure, ModeNetwork, MsgLicenseFailure)
	case !decision.Unlocked:
		return f.reject(ctx, StateLicenseRejected, EventLicenseFailure, ModeServer, MsgLicenseFailure)
	default:
		return f.unlock(ctx, EventLicenseSuccess, ModeServer, MsgLicenseSuccess)
	}
}

func (f *Flow) unlock(ctx context.Context, event, mode string, msg MessageKey) Outcome {
	f.setState(StateUnlocked)
	f.sink.Emit(ctx, Event{Name: event, Mode: mode, At: f.now()})

	out := Outcome{State: StateUnlocked, Mode: mode, Message: f.messages.Text(msg)}
	if err := f.flags.MarkUnlocked(ctx); err != nil {
		f.logger.ErrorContext(ctx, "persist unlock flag", "operation", "mark_unlocked", "error", err)
		out.Err = errors.Join(ErrPersist, err)
		out.Message = f.messages.Text(MsgPersistFailure)
	}
	return out
}

func (f *Flow) reject(ctx context.Context, state State, event, mode string, msg MessageKey) Outcome {
	f.setState(state)
	f.sink.Emit(ctx, Event{Name: event, Mode: mode, At: f.now()})
	return Outcome{State: state, Mode: mode, Message: f.messages.Text(msg)}
}

// ErrPersist wraps failures to store the unlock flag.
var ErrPersist = errors.New("unlock flag not persisted")
