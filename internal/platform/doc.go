// Package platform resolves per-user directories that the runner needs but the
// standard library does not expose directly, most importantly the "local data"
// directory used as the default cache root (XDG data home on Linux and BSD,
// Application Support on macOS, LOCALAPPDATA on Windows).
package platform
