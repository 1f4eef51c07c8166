package launch

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/warp-runner/warp-runner/internal/cache"
	"github.com/warp-runner/warp-runner/internal/magic"
	"github.com/warp-runner/warp-runner/internal/payload"
)

// packagedHost 让 Launcher 把一个测试生成的打包文件当作"自身可执行文件"。
type packagedHost struct {
	path string
}

func (h packagedHost) Executable() (string, error) { return h.path, nil }

func (h packagedHost) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

type recordingExecutor struct {
	calls  int
	target string
	args   []string
	code   int
	err    error
}

func (e *recordingExecutor) Execute(_ context.Context, target string, args []string) (int, error) {
	e.calls++
	e.target = target
	e.args = args
	return e.code, e.err
}

type countingExtractor struct {
	inner cache.Extractor
	calls int
	err   error
}

func (c *countingExtractor) Extract(ctx context.Context, source, dest string) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	return c.inner.Extract(ctx, source, dest)
}

// writePackaged 生成带 payload 的"可执行文件"，目标脚本以 exitCode 退出。
func writePackaged(t *testing.T, exitCode int) string {
	t.Helper()
	input := t.TempDir()
	script := "#!/bin/sh\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(filepath.Join(input, "app.sh"), []byte(script), 0o755); err != nil {
		t.Fatalf("write target: %v", err)
	}

	path := filepath.Join(t.TempDir(), "myapp")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		t.Fatalf("create package: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("runner-bytes"); err != nil {
		t.Fatalf("write runner bytes: %v", err)
	}
	if _, err := payload.Write(context.Background(), f, input); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	return path
}

type launchFixture struct {
	self      string
	cacheDir  string
	extractor *countingExtractor
	stderr    *bytes.Buffer
	ids       magic.Identifiers
}

func newLaunchFixture(t *testing.T, exitCode int) *launchFixture {
	t.Helper()
	ids := magic.Identifiers{BuildUID: "uid-1", TargetFileName: "app.sh"}
	return &launchFixture{
		self:      writePackaged(t, exitCode),
		cacheDir:  t.TempDir(),
		extractor: &countingExtractor{inner: payload.NewExtractor(ids.TargetFileName, nil)},
		stderr:    &bytes.Buffer{},
		ids:       ids,
	}
}

func (f *launchFixture) launcher(executor Executor) *Launcher {
	return New(Options{
		Host:        packagedHost{path: f.self},
		Cache:       cache.NewManager(cache.ManagerOptions{Extractor: f.extractor}),
		Executor:    executor,
		Identifiers: f.ids,
		CacheDir:    f.cacheDir,
		Stderr:      f.stderr,
	})
}

func (f *launchFixture) entryPath() string {
	return filepath.Join(f.cacheDir, "packages", "myapp.uid-1")
}

func TestPrepareResolvesTargetPath(t *testing.T) {
	f := newLaunchFixture(t, 0)
	target, err := f.launcher(&recordingExecutor{}).Prepare(context.Background())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if target != filepath.Join(f.entryPath(), "app.sh") {
		t.Fatalf("unexpected target %s", target)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target should be extracted: %v", err)
	}
}

func TestRunForwardsExitCodeAndArgs(t *testing.T) {
	f := newLaunchFixture(t, 0)
	executor := &recordingExecutor{code: 42}

	code := f.launcher(executor).Run(context.Background(), []string{"--flag", "value"})
	if code != 42 {
		t.Fatalf("expected forwarded exit code 42, got %d", code)
	}
	if executor.calls != 1 || strings.Join(executor.args, " ") != "--flag value" {
		t.Fatalf("executor not invoked as expected: %+v", executor)
	}
}

func TestRunExtractionFailureNeverExecutes(t *testing.T) {
	f := newLaunchFixture(t, 0)
	f.extractor.err = errors.New("payload truncated")
	executor := &recordingExecutor{}

	code := f.launcher(executor).Run(context.Background(), nil)
	if code != ExitInternalError {
		t.Fatalf("expected internal error exit code, got %d", code)
	}
	if executor.calls != 0 {
		t.Fatalf("executor must not run after extraction failure")
	}
	if !strings.Contains(f.stderr.String(), "payload truncated") {
		t.Fatalf("stderr should describe the failure: %q", f.stderr.String())
	}
}

func TestRunExecutorFailure(t *testing.T) {
	f := newLaunchFixture(t, 0)
	executor := &recordingExecutor{err: errors.New("exec format error")}

	code := f.launcher(executor).Run(context.Background(), nil)
	if code != ExitInternalError {
		t.Fatalf("expected internal error exit code, got %d", code)
	}
	if !strings.HasPrefix(f.stderr.String(), "warp: execute ") {
		t.Fatalf("unexpected diagnostic: %q", f.stderr.String())
	}
}

func TestRunWithoutDataDir(t *testing.T) {
	f := newLaunchFixture(t, 0)
	f.cacheDir = ""
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "")
	t.Setenv("LOCALAPPDATA", "")
	executor := &recordingExecutor{}

	if code := f.launcher(executor).Run(context.Background(), nil); code != ExitInternalError {
		t.Fatalf("expected internal error exit code, got %d", code)
	}
	if executor.calls != 0 || f.extractor.calls != 0 {
		t.Fatalf("nothing should run without a cache root")
	}
}

func TestEndToEndFreshCache(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script targets require a unix shell")
	}
	f := newLaunchFixture(t, 0)

	if code := f.launcher(ProcessExecutor{}).Run(context.Background(), nil); code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr %q)", code, f.stderr.String())
	}
	if _, err := os.Stat(filepath.Join(f.entryPath(), "app.sh")); err != nil {
		t.Fatalf("cache entry should contain the target: %v", err)
	}
}

func TestEndToEndTargetExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script targets require a unix shell")
	}
	f := newLaunchFixture(t, 3)

	if code := f.launcher(ProcessExecutor{}).Run(context.Background(), nil); code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
}

func TestEndToEndStaleCacheIsRebuiltOnce(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script targets require a unix shell")
	}
	f := newLaunchFixture(t, 0)

	entry := f.entryPath()
	if err := os.MkdirAll(entry, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(entry, "stale-marker"), []byte("old"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(f.self, old.Add(time.Hour), old.Add(time.Hour)); err != nil {
		t.Fatalf("chtimes self: %v", err)
	}
	if err := os.Chtimes(entry, old, old); err != nil {
		t.Fatalf("chtimes entry: %v", err)
	}

	if code := f.launcher(ProcessExecutor{}).Run(context.Background(), nil); code != 0 {
		t.Fatalf("first run exit code %d (stderr %q)", code, f.stderr.String())
	}
	if f.extractor.calls != 1 {
		t.Fatalf("stale entry should be extracted once, got %d", f.extractor.calls)
	}
	if _, err := os.Stat(filepath.Join(entry, "stale-marker")); err == nil {
		t.Fatalf("stale entry contents should have been removed")
	}

	if code := f.launcher(ProcessExecutor{}).Run(context.Background(), nil); code != 0 {
		t.Fatalf("second run exit code %d", code)
	}
	if f.extractor.calls != 1 {
		t.Fatalf("fresh entry must not be extracted again, got %d calls", f.extractor.calls)
	}
}
