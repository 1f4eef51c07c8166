package cache

import (
	"path/filepath"

	"github.com/warp-runner/warp-runner/internal/config"
	"github.com/warp-runner/warp-runner/internal/platform"
)

const (
	appDirName      = "warp"
	packagesDirName = "packages"
	lockSuffix      = ".lock"
)

// ResolveRoot 返回缓存根目录：override（WARP_CACHE_DIR）非空时原样使用，
// 否则为平台本地数据目录下的 warp 子目录。
func ResolveRoot(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := platform.DataLocalDir()
	if err != nil {
		return "", &config.ConfigError{Kind: config.ErrNoDataDir, Name: "data_local_dir", Err: err}
	}
	return filepath.Join(dir, appDirName), nil
}

// EntryPath 返回 <root>/packages/<key>。
func EntryPath(root string, key Key) string {
	return filepath.Join(root, packagesDirName, string(key))
}

// ResolvePath 组合 ResolveRoot 与 EntryPath。
func ResolvePath(override string, key Key) (string, error) {
	root, err := ResolveRoot(override)
	if err != nil {
		return "", err
	}
	return EntryPath(root, key), nil
}

// lockPath 与缓存条目同级，锁文件不随条目删除。
func lockPath(entryPath string) string {
	return entryPath + lockSuffix
}
