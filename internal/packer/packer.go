package packer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warp-runner/warp-runner/internal/magic"
	"github.com/warp-runner/warp-runner/internal/payload"
)

// Options 描述一次打包所需的输入。
type Options struct {
	// Runner 是未打补丁的 runner 可执行文件。
	Runner string
	// InputDir 是要打包的应用目录。
	InputDir string
	// Exec 是 InputDir 内目标程序的相对路径（斜杠分隔）。
	Exec string
	// Output 是生成的可执行文件路径。
	Output string
	// BuildUID 为空时自动生成 UUID。
	BuildUID string
	Logger   *logrus.Logger
}

// Result 汇总打包产物信息。
type Result struct {
	Output       string
	BuildUID     string
	ArchiveBytes int64
}

var (
	// ErrPlaceholderNotFound 表示 runner 中找不到标识占位符，通常是传错了文件。
	ErrPlaceholderNotFound = errors.New("identifier placeholder not found in runner")
	// ErrValueTooLong 表示标识值超过占位符容量。
	ErrValueTooLong = errors.New("identifier value longer than placeholder")
)

// Pack 生成自解压可执行文件。
func Pack(ctx context.Context, opts Options) (*Result, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	uid := opts.BuildUID
	if uid == "" {
		uid = uuid.NewString()
	}

	runner, err := os.ReadFile(opts.Runner)
	if err != nil {
		return nil, fmt.Errorf("read runner: %w", err)
	}
	runner, err = Patch(runner, magic.BuildUIDPlaceholder, uid)
	if err != nil {
		return nil, fmt.Errorf("patch build uid: %w", err)
	}
	runner, err = Patch(runner, magic.TargetFileNamePlaceholder, opts.Exec)
	if err != nil {
		return nil, fmt.Errorf("patch target file name: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(opts.Output), ".warp-pack-*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()

	archiveBytes, err := writePackage(ctx, tmp, runner, opts.InputDir)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o755)
	}
	if err == nil {
		err = os.Rename(tmpName, opts.Output)
	}
	if err != nil {
		os.Remove(tmpName)
		return nil, err
	}

	if opts.Logger != nil {
		opts.Logger.WithFields(logrus.Fields{
			"action":        "pack",
			"output":        opts.Output,
			"build_uid":     uid,
			"exec":          opts.Exec,
			"archive_bytes": archiveBytes,
		}).Info("package written")
	}
	return &Result{Output: opts.Output, BuildUID: uid, ArchiveBytes: archiveBytes}, nil
}

func writePackage(ctx context.Context, f *os.File, runner []byte, inputDir string) (int64, error) {
	if _, err := f.Write(runner); err != nil {
		return 0, err
	}
	return payload.Write(ctx, f, inputDir)
}

func validate(opts Options) error {
	switch {
	case opts.Runner == "":
		return errors.New("runner path required")
	case opts.InputDir == "":
		return errors.New("input dir required")
	case opts.Exec == "":
		return errors.New("exec name required")
	case opts.Output == "":
		return errors.New("output path required")
	}
	if !filepath.IsLocal(filepath.FromSlash(opts.Exec)) {
		return fmt.Errorf("exec %q must be a relative path inside the input dir", opts.Exec)
	}
	info, err := os.Stat(filepath.Join(opts.InputDir, filepath.FromSlash(opts.Exec)))
	if err != nil {
		return fmt.Errorf("exec not found in input dir: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("exec %q is a directory", opts.Exec)
	}
	return nil
}

// Patch 把 runner 中所有 placeholder+NUL 缓冲区替换为 value 加 NUL 填充，长度不变。
func Patch(runner []byte, placeholder, value string) ([]byte, error) {
	replacement, ok := magic.Buffer(placeholder, value)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrValueTooLong, len(value), len(placeholder))
	}
	needle := append([]byte(placeholder), 0)
	if !bytes.Contains(runner, needle) {
		return nil, ErrPlaceholderNotFound
	}
	return bytes.ReplaceAll(runner, needle, replacement), nil
}
