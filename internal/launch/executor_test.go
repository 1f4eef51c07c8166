//go:build !windows

package launch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestProcessExecutorReportsExitCode(t *testing.T) {
	code, err := ProcessExecutor{}.Execute(context.Background(), writeScript(t, `exit 7`), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if code != 7 {
		t.Fatalf("expected 7, got %d", code)
	}
}

func TestProcessExecutorForwardsArgsAndEnv(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	t.Setenv("WARP_TEST_VALUE", "inherited")
	script := writeScript(t, `printf '%s|%s' "$1" "$WARP_TEST_VALUE" > "$2"`)

	code, err := ProcessExecutor{}.Execute(context.Background(), script, []string{"first", out})
	if err != nil || code != 0 {
		t.Fatalf("execute: code=%d err=%v", code, err)
	}
	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(body) != "first|inherited" {
		t.Fatalf("unexpected output %q", body)
	}
}

func TestProcessExecutorSignalExitCode(t *testing.T) {
	code, err := ProcessExecutor{}.Execute(context.Background(), writeScript(t, `kill -TERM $$`), nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if code != 128+15 {
		t.Fatalf("expected 143, got %d", code)
	}
}

func TestProcessExecutorSpawnFailure(t *testing.T) {
	if _, err := (ProcessExecutor{}).Execute(context.Background(), filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatalf("expected spawn error")
	}
}
