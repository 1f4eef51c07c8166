package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoDataDir 表示当前平台无法确定本地数据目录。
var ErrNoDataDir = errors.New("local data directory not found")

// DataLocalDir 返回当前用户的本地数据目录。
func DataLocalDir() (string, error) {
	return dataLocalDirWith(os.Getenv)
}

// dataLocalDirWith 使用传入的 getenv 计算目录，便于测试时不修改进程环境。
func dataLocalDirWith(getenv func(string) string) (string, error) {
	dir := dataLocalDir(getenv)
	if dir == "" {
		return "", ErrNoDataDir
	}
	return filepath.Clean(dir), nil
}

// absOrEmpty 只接受绝对路径，相对路径按未设置处理。
func absOrEmpty(p string) string {
	if p == "" || !filepath.IsAbs(p) {
		return ""
	}
	return p
}
