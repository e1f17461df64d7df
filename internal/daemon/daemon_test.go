package daemon

import (
	"context"
	"testing"

	"tryon/internal/generation"
	"tryon/internal/logging"
	"tryon/internal/notifications"
	"tryon/internal/orchestrator"
	"tryon/internal/testsupport"
)

type idleGenerator struct{}

func (idleGenerator) Generate(ctx context.Context, _ generation.Request) ([]byte, error) {
	return []byte("x"), nil
}

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	orc := orchestrator.New(cfg, st, logging.NewNop(), notifications.NewService(cfg), idleGenerator{})

	d, err := New(cfg, st, logging.NewNop(), orc, notifications.NewService(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status()
	if !status.Running || status.PID <= 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start on a running daemon must fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon should report stopped")
	}

	// The lock is released; the daemon can start again.
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	d.Stop()
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)
	orc := orchestrator.New(cfg, st, logging.NewNop(), notifications.NewService(cfg), idleGenerator{})

	first, err := New(cfg, st, logging.NewNop(), orc, notifications.NewService(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second, err := New(cfg, st, logging.NewNop(), orc, notifications.NewService(cfg))
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must be rejected while the lock is held")
	}
}
