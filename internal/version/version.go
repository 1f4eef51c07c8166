package version

import (
	"fmt"
	"runtime/debug"
)

// Version/Commit 由打包流水线通过 -ldflags 注入；留空时回退到模块构建信息。
var (
	Version = ""
	Commit  = ""
)

const (
	devVersion = "devel"
	devCommit  = "unknown"
	shortSHA   = 12
)

// Info 是 runner 与 warp-packer 共用的构建标识。
type Info struct {
	Version  string
	Commit   string
	Modified bool
}

// Current 返回当前二进制的构建标识。
func Current() Info {
	return resolve(Version, Commit, debug.ReadBuildInfo)
}

// Full 返回便于 CLI 打印的完整版本信息。
func Full() string {
	return Current().String()
}

func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("warp %s (%s)", i.Version, commit)
}

func resolve(version, commit string, read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: version, Commit: commit}
	if bi, ok := read(); ok && bi != nil {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.modified":
				// ldflags 注入的 commit 以流水线为准，不再追加 dirty 标记。
				info.Modified = commit == "" && s.Value == "true"
			}
		}
	}
	if info.Version == "" {
		info.Version = devVersion
	}
	if info.Commit == "" {
		info.Commit = devCommit
	}
	if len(info.Commit) > shortSHA {
		info.Commit = info.Commit[:shortSHA]
	}
	return info
}
