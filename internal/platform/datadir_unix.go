//go:build !windows && !darwin

package platform

import "path/filepath"

func dataLocalDir(getenv func(string) string) string {
	if dir := absOrEmpty(getenv("XDG_DATA_HOME")); dir != "" {
		return dir
	}
	home := absOrEmpty(getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".local", "share")
}
