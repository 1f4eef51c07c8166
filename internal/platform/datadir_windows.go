//go:build windows

package platform

func dataLocalDir(getenv func(string) string) string {
	return absOrEmpty(getenv("LOCALAPPDATA"))
}
