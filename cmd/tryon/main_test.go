package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tryon/internal/generation"
	"tryon/internal/ipc"
	"tryon/internal/logging"
	"tryon/internal/notifications"
	"tryon/internal/orchestrator"
	"tryon/internal/testsupport"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, generation.Request) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, nil
}

func startTestDaemon(t *testing.T) string {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	orc := orchestrator.New(cfg, st, logging.NewNop(), notifications.NewService(cfg), stubGenerator{})
	t.Cleanup(orc.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(t.TempDir(), "tryond.sock")
	server, err := ipc.NewServer(ctx, socket, orc, nil, notifications.NewService(cfg), logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)
	return socket
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := newRootCommand()
	expected := []string{"try", "status", "clear", "result", "photo", "extract", "logs", "ping", "test-notify", "config"}
	for _, name := range expected {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestStatusCommandAgainstDaemon(t *testing.T) {
	socket := startTestDaemon(t)

	output, err := runCommand(t, "--socket", socket, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(output, "idle") {
		t.Fatalf("expected idle status in output:\n%s", output)
	}
}

func TestClearCommandAgainstDaemon(t *testing.T) {
	socket := startTestDaemon(t)

	output, err := runCommand(t, "--socket", socket, "clear")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(output, "idle") {
		t.Fatalf("expected idle snapshot after clear:\n%s", output)
	}
}

func TestPingCommandAgainstDaemon(t *testing.T) {
	socket := startTestDaemon(t)

	output, err := runCommand(t, "--socket", socket, "ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !strings.Contains(output, "tryond is running") {
		t.Fatalf("unexpected ping output:\n%s", output)
	}
}

func TestStatusFailsWithoutDaemon(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "missing.sock")

	_, err := runCommand(t, "--socket", socket, "status")
	if err == nil {
		t.Fatal("expected dial error when the daemon is absent")
	}
	if !strings.Contains(err.Error(), "connect to daemon") {
		t.Fatalf("unhelpful dial error: %v", err)
	}
}

func TestPhotoCommandsAgainstDaemon(t *testing.T) {
	socket := startTestDaemon(t)

	photoPath := filepath.Join(t.TempDir(), "me.jpg")
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	if err := os.WriteFile(photoPath, jpeg, 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	output, err := runCommand(t, "--socket", socket, "photo", "set", photoPath)
	if err != nil {
		t.Fatalf("photo set: %v", err)
	}
	if !strings.Contains(output, "me.jpg") {
		t.Fatalf("label missing from output:\n%s", output)
	}

	output, err = runCommand(t, "--socket", socket, "photo", "show")
	if err != nil {
		t.Fatalf("photo show: %v", err)
	}
	if !strings.Contains(output, "me.jpg") {
		t.Fatalf("expected saved photo listed:\n%s", output)
	}

	if _, err := runCommand(t, "--socket", socket, "photo", "remove"); err != nil {
		t.Fatalf("photo remove: %v", err)
	}
	output, err = runCommand(t, "--socket", socket, "photo", "show")
	if err != nil {
		t.Fatalf("photo show after remove: %v", err)
	}
	if !strings.Contains(output, "no reference photo saved") {
		t.Fatalf("photo should be gone:\n%s", output)
	}
}
