package cache

import (
	"fmt"
	"io/fs"
	"os"
)

// Host 抽象"读取自身可执行文件"的能力，测试中可替换为固定路径与时钟。
type Host interface {
	Executable() (string, error)
	Stat(name string) (fs.FileInfo, error)
}

// OSHost 使用真实操作系统实现 Host。
type OSHost struct{}

func (OSHost) Executable() (string, error) {
	return os.Executable()
}

func (OSHost) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Self 读取当前可执行文件的路径与修改时间。
func Self(h Host) (SelfInfo, error) {
	path, err := h.Executable()
	if err != nil {
		return SelfInfo{}, &IOError{Op: "locate executable", Path: "", Err: err}
	}
	info, err := h.Stat(path)
	if err != nil {
		return SelfInfo{}, &IOError{Op: "stat", Path: path, Err: fmt.Errorf("read executable metadata: %w", err)}
	}
	return SelfInfo{Path: path, ModTime: info.ModTime()}, nil
}
