package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/warp-runner/warp-runner/internal/cache"
	"github.com/warp-runner/warp-runner/internal/config"
	"github.com/warp-runner/warp-runner/internal/launch"
	"github.com/warp-runner/warp-runner/internal/logging"
	"github.com/warp-runner/warp-runner/internal/magic"
	"github.com/warp-runner/warp-runner/internal/payload"
	"github.com/warp-runner/warp-runner/internal/version"
)

// stdErr 承载诊断输出与 trace 日志；stdout 完全留给目标程序。
var stdErr io.Writer = os.Stderr

// runnerDeps 允许测试替换宿主、执行器与标识来源。
type runnerDeps struct {
	host     cache.Host
	executor launch.Executor
	identify func() (magic.Identifiers, error)
}

var defaultDeps = runnerDeps{
	host:     cache.OSHost{},
	executor: launch.ProcessExecutor{},
	identify: magic.Load,
}

func main() {
	// os.Exit 之后不会再执行任何 defer，所有资源都在 run 内释放。
	os.Exit(run(os.Args[1:], defaultDeps))
}

// run 完成一次完整的启动流程并返回退出码，方便测试。
// 命令行参数不做解析，原样转交目标程序。
func run(args []string, deps runnerDeps) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdErr, "warp: 加载配置失败: %v\n", err)
		return launch.ExitInternalError
	}

	logger, closer := logging.InitLogger(*cfg, stdErr)
	defer closer.Close()

	ids, err := deps.identify()
	if err != nil {
		fmt.Fprintf(stdErr, "warp: %v\n", err)
		return launch.ExitInternalError
	}

	build := version.Current()
	logger.WithFields(logrus.Fields{
		"action":    "startup",
		"version":   build.Version,
		"commit":    build.Commit,
		"cache_dir": cfg.CacheDir,
	}).Trace("runner started")

	manager := cache.NewManager(cache.ManagerOptions{
		Extractor: payload.NewExtractor(ids.TargetFileName, logger),
		Logger:    logger,
	})
	launcher := launch.New(launch.Options{
		Host:        deps.host,
		Cache:       manager,
		Executor:    deps.executor,
		Identifiers: ids,
		CacheDir:    cfg.CacheDir,
		Logger:      logger,
		Stderr:      stdErr,
	})
	return launcher.Run(context.Background(), args)
}
