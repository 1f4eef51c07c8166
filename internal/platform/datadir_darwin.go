//go:build darwin

package platform

import "path/filepath"

func dataLocalDir(getenv func(string) string) string {
	home := absOrEmpty(getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support")
}
