package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize 以 MB 为单位描述日志文件上限，兼容纯数字与 "10MB"、"1GB" 写法。
type ByteSize int

// UnmarshalText 使 Viper 可以识别诸如 "10"、"10MB" 或 "1GB" 等写法。
func (s *ByteSize) UnmarshalText(text []byte) error {
	parsed, err := parseMegabytes(string(text))
	if err != nil {
		return err
	}
	*s = ByteSize(parsed)
	return nil
}

// Megabytes 返回以 MB 计的整数值，供 lumberjack 使用。
func (s ByteSize) Megabytes() int {
	return int(s)
}

// parseMegabytes 解析 MB/GB 后缀，缺省单位为 MB。
func parseMegabytes(value string) (int, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, nil
	}

	multiplier := 1
	switch {
	case strings.HasSuffix(raw, "GB"):
		multiplier = 1024
		raw = strings.TrimSuffix(raw, "GB")
	case strings.HasSuffix(raw, "MB"):
		raw = strings.TrimSuffix(raw, "MB")
	case strings.HasSuffix(raw, "M"):
		raw = strings.TrimSuffix(raw, "M")
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %s", value)
	}
	return n * multiplier, nil
}

// Config 汇总 runner 的运行期配置，全部来源于 WARP_* 环境变量。
type Config struct {
	// CacheDir 覆盖缓存根目录；为空时使用平台本地数据目录。
	CacheDir string `mapstructure:"CACHE_DIR"`
	// Trace 对应 WARP_TRACE 是否存在，存在即开启 trace 级别诊断。
	Trace bool `mapstructure:"-"`

	LogFile       string   `mapstructure:"LOG_FILE"`
	LogMaxSize    ByteSize `mapstructure:"LOG_MAX_SIZE"`
	LogMaxBackups int      `mapstructure:"LOG_MAX_BACKUPS"`
	LogCompress   bool     `mapstructure:"LOG_COMPRESS"`
}

// Validate 针对语义级别做进一步校验。
func (c *Config) Validate() error {
	if c.LogMaxSize < 0 {
		return newFieldError(envField(keyLogMaxSize), "不能为负数")
	}
	if c.LogMaxBackups < 0 {
		return newFieldError(envField(keyLogMaxBackups), "不能为负数")
	}
	return nil
}
