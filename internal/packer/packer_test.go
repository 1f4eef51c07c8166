package packer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/warp-runner/warp-runner/internal/magic"
	"github.com/warp-runner/warp-runner/internal/payload"
)

// fakeRunner 模拟编译后的 runner：两个占位符缓冲区夹在任意字节中间。
func fakeRunner(t *testing.T) string {
	t.Helper()
	body := []byte("\x7fELF header bytes ")
	body = append(body, magic.BuildUIDPlaceholder...)
	body = append(body, 0)
	body = append(body, " more code "...)
	body = append(body, magic.TargetFileNamePlaceholder...)
	body = append(body, 0)
	body = append(body, " trailer"...)
	path := filepath.Join(t.TempDir(), "runner")
	if err := os.WriteFile(path, body, 0o755); err != nil {
		t.Fatalf("write runner: %v", err)
	}
	return path
}

func TestPatchKeepsLength(t *testing.T) {
	runner := append([]byte("abc"), magic.BuildUIDPlaceholder...)
	runner = append(runner, 0, 'x')

	patched, err := Patch(runner, magic.BuildUIDPlaceholder, "v2")
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if len(patched) != len(runner) {
		t.Fatalf("length changed: %d -> %d", len(runner), len(patched))
	}
	got, err := magic.Read("TARGET_UID_BUF", patched[3:])
	if err != nil || got != "v2" {
		t.Fatalf("patched value mismatch: %q %v", got, err)
	}
}

func TestPatchErrors(t *testing.T) {
	if _, err := Patch([]byte("no placeholder"), magic.BuildUIDPlaceholder, "v"); !errors.Is(err, ErrPlaceholderNotFound) {
		t.Fatalf("expected ErrPlaceholderNotFound, got %v", err)
	}
	long := magic.BuildUIDPlaceholder + "x"
	if _, err := Patch([]byte(magic.BuildUIDPlaceholder+"\x00"), magic.BuildUIDPlaceholder, long); !errors.Is(err, ErrValueTooLong) {
		t.Fatalf("expected ErrValueTooLong, got %v", err)
	}
}

func TestPackProducesExtractablePackage(t *testing.T) {
	input := t.TempDir()
	if err := os.WriteFile(filepath.Join(input, "app.sh"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write app: %v", err)
	}
	output := filepath.Join(t.TempDir(), "dist", "app")

	res, err := Pack(context.Background(), Options{
		Runner:   fakeRunner(t),
		InputDir: input,
		Exec:     "app.sh",
		Output:   output,
		BuildUID: "build-42",
	})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if res.BuildUID != "build-42" || res.ArchiveBytes <= 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	dest := filepath.Join(t.TempDir(), "out")
	if err := payload.NewExtractor("app.sh", nil).Extract(context.Background(), output, dest); err != nil {
		t.Fatalf("extract packaged output: %v", err)
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("output should be executable: %v", info.Mode())
	}
}

func TestPackGeneratesBuildUID(t *testing.T) {
	input := t.TempDir()
	if err := os.WriteFile(filepath.Join(input, "app"), []byte("bin"), 0o755); err != nil {
		t.Fatalf("write app: %v", err)
	}
	res, err := Pack(context.Background(), Options{
		Runner:   fakeRunner(t),
		InputDir: input,
		Exec:     "app",
		Output:   filepath.Join(t.TempDir(), "app"),
	})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(res.BuildUID) != 36 {
		t.Fatalf("expected generated uuid, got %q", res.BuildUID)
	}
}

func TestPackValidatesInputs(t *testing.T) {
	input := t.TempDir()
	cases := []Options{
		{InputDir: input, Exec: "app", Output: "out"},
		{Runner: "r", Exec: "app", Output: "out"},
		{Runner: "r", InputDir: input, Output: "out"},
		{Runner: "r", InputDir: input, Exec: "app"},
		{Runner: "r", InputDir: input, Exec: "../app", Output: "out"},
		{Runner: "r", InputDir: input, Exec: "missing", Output: "out"},
	}
	for _, opts := range cases {
		if _, err := Pack(context.Background(), opts); err == nil {
			t.Fatalf("expected validation error for %+v", opts)
		}
	}
}
