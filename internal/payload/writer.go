package payload

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Write 将 dir 打包为 gzip(tar) 写入 w，并在末尾追加 footer。
// 返回写入的 archive 长度（不含 footer）。
func Write(ctx context.Context, w io.Writer, dir string) (int64, error) {
	counter := &countingWriter{w: w}
	if err := writeArchive(ctx, counter, dir); err != nil {
		return counter.n, err
	}
	if err := writeFooter(w, counter.n); err != nil {
		return counter.n, fmt.Errorf("write payload footer: %w", err)
	}
	return counter.n, nil
}

func writeArchive(ctx context.Context, w io.Writer, dir string) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		return addEntry(ctx, tw, path, filepath.ToSlash(rel), d)
	})
	if walkErr != nil {
		return fmt.Errorf("archive %s: %w", dir, walkErr)
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func addEntry(ctx context.Context, tw *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}
	// 不记录宿主机的用户信息，解包时以当前用户创建。
	hdr.Uid, hdr.Gid, hdr.Uname, hdr.Gname = 0, 0, "", ""

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = copyChunks(ctx, tw, f)
	return err
}
