package recovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// FlagKey is the key the gated UI reads to decide whether to reveal content.
const FlagKey = "purchaseUnlocked"

const flagTrue = "true"

// Backend is one client-side key/value store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FlagStore keeps the unlock flag in a durable and a session backend. The
// durable backend is authoritative; every write goes to both or neither.
type FlagStore struct {
	mu      sync.Mutex
	durable Backend
	session Backend
}

// NewFlagStore creates a store over the two backends.
func NewFlagStore(durable, session Backend) *FlagStore {
	return &FlagStore{durable: durable, session: session}
}

// MarkUnlocked sets the flag in both backends. If the session write fails the
// durable backend is restored to its previous value.
func (s *FlagStore) MarkUnlocked(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had, err := s.durable.Get(ctx, FlagKey)
	if err != nil {
		return fmt.Errorf("read durable flag: %w", err)
	}
	if err := s.durable.Set(ctx, FlagKey, flagTrue); err != nil {
		return fmt.Errorf("write durable flag: %w", err)
	}
	if err := s.session.Set(ctx, FlagKey, flagTrue); err != nil {
		var rollbackErr error
		if had {
			rollbackErr = s.durable.Set(ctx, FlagKey, prev)
		} else {
			rollbackErr = s.durable.Delete(ctx, FlagKey)
		}
		return errors.Join(fmt.Errorf("write session flag: %w", err), rollbackErr)
	}
	return nil
}

// Unlocked reports the durable flag and brings the session copy in line
// with it.
func (s *FlagStore) Unlocked(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, _, err := s.durable.Get(ctx, FlagKey)
	if err != nil {
		return false, fmt.Errorf("read durable flag: %w", err)
	}
	unlocked := value == flagTrue

	sessionValue, _, err := s.session.Get(ctx, FlagKey)
	if err != nil {
		return unlocked, fmt.Errorf("read session flag: %w", err)
	}
	switch {
	case unlocked && sessionValue != flagTrue:
		err = s.session.Set(ctx, FlagKey, flagTrue)
	case !unlocked && sessionValue != "":
		err = s.session.Delete(ctx, FlagKey)
	}
	if err != nil {
		return unlocked, fmt.Errorf("sync session flag: %w", err)
	}
	return unlocked, nil
}

// Reset clears the flag from both backends.
func (s *FlagStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(
		s.durable.Delete(ctx, FlagKey),
		s.session.Delete(ctx, FlagKey),
	)
}

// MemoryBackend is a session-scoped backend living as long as the process.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
