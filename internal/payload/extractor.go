package payload

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
)

// ErrUnsafePath 表示 archive 条目试图写到目标目录之外。
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extractor 从打包后的可执行文件中解包 payload，并确认目标程序存在。
type Extractor struct {
	target string
	logger *logrus.Logger
}

// NewExtractor 构建 Extractor，target 为 payload 中目标程序的相对路径。
func NewExtractor(target string, logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Extractor{target: target, logger: logger}
}

// Extract 打开 source，定位 footer 后把 archive 解包到 dest。
func (e *Extractor) Extract(ctx context.Context, source, dest string) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	offset, length, err := Locate(f, info.Size())
	if err != nil {
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"action":  "extract",
		"source":  source,
		"dest":    dest,
		"offset":  offset,
		"archive": length,
	}).Trace("payload located")

	if err := extractArchive(ctx, io.NewSectionReader(f, offset, length), dest); err != nil {
		return err
	}

	if e.target != "" {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(e.target))); err != nil {
			return fmt.Errorf("payload does not contain target %q: %w", e.target, err)
		}
	}
	return nil
}

func extractArchive(ctx context.Context, r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
		if err := extractEntry(ctx, tr, hdr, dest); err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	}
}

func extractEntry(ctx context.Context, tr *tar.Reader, hdr *tar.Header, dest string) error {
	name := filepath.FromSlash(hdr.Name)
	if !filepath.IsLocal(name) {
		return ErrUnsafePath
	}
	target, err := securejoin.SecureJoin(dest, name)
	if err != nil {
		return err
	}
	mode := hdr.FileInfo().Mode().Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, mode|0o700)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
		if err != nil {
			return err
		}
		_, copyErr := copyChunks(ctx, out, tr)
		closeErr := out.Close()
		if copyErr != nil {
			return copyErr
		}
		return closeErr
	case tar.TypeSymlink:
		link := filepath.FromSlash(hdr.Linkname)
		if filepath.IsAbs(link) || !filepath.IsLocal(filepath.Join(filepath.Dir(name), link)) {
			return ErrUnsafePath
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.Symlink(link, target)
	default:
		// 设备文件、硬链接等不在 payload 支持范围内。
		return nil
	}
}
