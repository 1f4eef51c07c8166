//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package cache

// acquireFileLock 在不支持 flock 的平台上不可用，调用方退回进程内锁，
// 跨进程安全仅依赖临时目录 + rename。
func acquireFileLock(string) (func(), error) {
	return nil, ErrLockUnavailable
}
