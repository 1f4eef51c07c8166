package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Key 唯一标识一个构建版本：<可执行文件名>.<build UID>。
// 同一程序的多个版本可以共享缓存根目录而互不失效。
type Key string

// NewKey 由当前可执行文件路径与 build UID 派生缓存键。
func NewKey(selfPath, buildUID string) Key {
	return Key(filepath.Base(selfPath) + "." + buildUID)
}

func (k Key) String() string {
	return string(k)
}

// Verdict 是每次运行时根据时间戳计算出的缓存判定，不做持久化。
type Verdict int

const (
	Absent Verdict = iota
	Stale
	Fresh
)

func (v Verdict) String() string {
	switch v {
	case Absent:
		return "absent"
	case Stale:
		return "stale"
	case Fresh:
		return "fresh"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// SelfInfo 描述当前运行的可执行文件。
type SelfInfo struct {
	Path    string
	ModTime time.Time
}

// Extractor 把 source 可执行文件中附带的 payload 解包到 dest 目录。
// dest 在调用前不存在，实现需要自行创建。
type Extractor interface {
	Extract(ctx context.Context, source, dest string) error
}

// Locker 以缓存键为粒度串行化失效与解包，返回的 release 必须被调用。
type Locker interface {
	Lock(path string) (release func(), err error)
}

// ErrLockUnavailable 表示当前平台无法获得跨进程锁；此时 release 仍持有进程内锁。
var ErrLockUnavailable = errors.New("cross-process lock not available on this platform")

// IOError 记录失败的文件系统/解包操作及其路径。
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
