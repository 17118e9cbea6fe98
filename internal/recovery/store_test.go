package recovery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type failingBackend struct {
	*MemoryBackend
	failSet bool
}

var errBackend = errors.New("storage quota exceeded")

func (f *failingBackend) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errBackend
	}
	return f.MemoryBackend.Set(ctx, key, value)
}

func TestFlagStoreMarkAndReset(t *testing.T) {
	ctx := context.Background()
	durable, session := NewMemoryBackend(), NewMemoryBackend()
	store := NewFlagStore(durable, session)

	if ok, err := store.Unlocked(ctx); err != nil || ok {
		t.Fatalf("fresh store: unlocked=%v err=%v", ok, err)
	}
	if err := store.MarkUnlocked(ctx); err != nil {
		t.Fatalf("mark: %v", err)
	}
	for name, b := range map[string]*MemoryBackend{"durable": durable, "session": session} {
		if v, _, _ := b.Get(ctx, FlagKey); v != "true" {
			t.Fatalf("%s flag = %q", name, v)
		}
	}
	if ok, err := store.Unlocked(ctx); err != nil || !ok {
		t.Fatalf("after mark: unlocked=%v err=%v", ok, err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for name, b := range map[string]*MemoryBackend{"durable": durable, "session": session} {
		if _, ok, _ := b.Get(ctx, FlagKey); ok {
			t.Fatalf("%s flag survived reset", name)
		}
	}
}

func TestFlagStoreRollsBackDurableWrite(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryBackend()
	session := &failingBackend{MemoryBackend: NewMemoryBackend(), failSet: true}
	store := NewFlagStore(durable, session)

	err := store.MarkUnlocked(ctx)
	if !errors.Is(err, errBackend) {
		t.Fatalf("err = %v, want backend error", err)
	}
	if _, ok, _ := durable.Get(ctx, FlagKey); ok {
		t.Fatal("durable flag must be rolled back when the session write fails")
	}

	// A previous value is restored rather than deleted.
	_ = durable.Set(ctx, FlagKey, "false")
	_ = store.MarkUnlocked(ctx)
	if v, _, _ := durable.Get(ctx, FlagKey); v != "false" {
		t.Fatalf("durable flag = %q, want previous value", v)
	}
}

func TestFlagStoreSyncsSessionFromDurable(t *testing.T) {
	ctx := context.Background()
	durable, session := NewMemoryBackend(), NewMemoryBackend()
	store := NewFlagStore(durable, session)

	_ = durable.Set(ctx, FlagKey, "true")
	if ok, err := store.Unlocked(ctx); err != nil || !ok {
		t.Fatalf("unlocked=%v err=%v", ok, err)
	}
	if v, _, _ := session.Get(ctx, FlagKey); v != "true" {
		t.Fatalf("session flag = %q, want repaired copy", v)
	}

	_ = durable.Delete(ctx, FlagKey)
	if ok, err := store.Unlocked(ctx); err != nil || ok {
		t.Fatalf("unlocked=%v err=%v", ok, err)
	}
	if _, ok, _ := session.Get(ctx, FlagKey); ok {
		t.Fatal("stale session flag must be cleared")
	}
}

func TestSQLiteBackendPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	backend, err := OpenSQLiteBackend(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, err := backend.Get(ctx, FlagKey); err != nil || ok {
		t.Fatalf("empty get: ok=%v err=%v", ok, err)
	}
	if err := backend.Set(ctx, FlagKey, "false"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := backend.Set(ctx, FlagKey, "true"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLiteBackend(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, FlagKey)
	if err != nil || !ok || v != "true" {
		t.Fatalf("after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := reopened.Delete(ctx, FlagKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, FlagKey); ok {
		t.Fatal("flag survived delete")
	}
}

func TestOpenSQLiteBackendRequiresPath(t *testing.T) {
	if _, err := OpenSQLiteBackend(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
