package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/warp-runner/warp-runner/internal/cache"
	"github.com/warp-runner/warp-runner/internal/logging"
	"github.com/warp-runner/warp-runner/internal/magic"
)

// ExitInternalError 是 runner 自身失败（配置、解包、启动）时的退出码，
// 与目标程序常见的 1/2 区分开。
const ExitInternalError = 70

// Ensurer 是 Launcher 对缓存管理的依赖，*cache.Manager 实现该接口。
type Ensurer interface {
	Ensure(ctx context.Context, self cache.SelfInfo, entryPath string) (cache.Verdict, error)
}

// Options 汇总 Launcher 的依赖。
type Options struct {
	Host        cache.Host
	Cache       Ensurer
	Executor    Executor
	Identifiers magic.Identifiers
	// CacheDir 对应 WARP_CACHE_DIR，为空时使用平台默认目录。
	CacheDir string
	Logger   *logrus.Logger
	Stderr   io.Writer
}

// Launcher 串起一次运行的状态机：
// ResolveIdentifiers → ResolveCachePath → CheckFreshness → [Invalidate → Extract] → Ready → Execute。
type Launcher struct {
	opts Options
}

// New 构建 Launcher，未提供的 Host/Executor/Logger/Stderr 使用生产默认值。
func New(opts Options) *Launcher {
	if opts.Host == nil {
		opts.Host = cache.OSHost{}
	}
	if opts.Executor == nil {
		opts.Executor = ProcessExecutor{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Launcher{opts: opts}
}

// Prepare 返回校验过的目标程序路径；缓存缺失或过期时会重新解包。
func (l *Launcher) Prepare(ctx context.Context) (string, error) {
	self, err := cache.Self(l.opts.Host)
	if err != nil {
		return "", err
	}

	key := cache.NewKey(self.Path, l.opts.Identifiers.BuildUID)
	entryPath, err := cache.ResolvePath(l.opts.CacheDir, key)
	if err != nil {
		return "", err
	}
	targetPath := filepath.Join(entryPath, filepath.FromSlash(l.opts.Identifiers.TargetFileName))

	l.opts.Logger.WithFields(logging.BaseFields("resolve", key.String())).WithFields(logrus.Fields{
		"self_path":   self.Path,
		"build_uid":   l.opts.Identifiers.BuildUID,
		"cache_path":  entryPath,
		"target_exec": l.opts.Identifiers.TargetFileName,
		"target_path": targetPath,
	}).Trace("paths resolved")

	if l.opts.Cache == nil {
		return "", fmt.Errorf("cache manager not configured")
	}
	if _, err := l.opts.Cache.Ensure(ctx, self, entryPath); err != nil {
		return "", err
	}
	return targetPath, nil
}

// Run 准备缓存后执行目标程序，返回应当作为进程退出码的值。
// 任何准备阶段的失败都不会调用 Executor。
func (l *Launcher) Run(ctx context.Context, args []string) int {
	targetPath, err := l.Prepare(ctx)
	if err != nil {
		return l.fail(err)
	}

	code, err := l.opts.Executor.Execute(ctx, targetPath, args)
	if err != nil {
		return l.fail(&cache.IOError{Op: "execute", Path: targetPath, Err: err})
	}
	l.opts.Logger.WithFields(logrus.Fields{
		"action":      "execute",
		"target_path": targetPath,
		"exit_code":   code,
	}).Trace("target exited")
	return code
}

func (l *Launcher) fail(err error) int {
	l.opts.Logger.WithFields(logrus.Fields{"action": "fatal"}).Error(err.Error())
	fmt.Fprintf(l.opts.Stderr, "warp: %v\n", err)
	return ExitInternalError
}
