package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "WARP"

const (
	keyCacheDir      = "CACHE_DIR"
	keyTrace         = "TRACE"
	keyLogFile       = "LOG_FILE"
	keyLogMaxSize    = "LOG_MAX_SIZE"
	keyLogMaxBackups = "LOG_MAX_BACKUPS"
	keyLogCompress   = "LOG_COMPRESS"
)

// Load 从 WARP_* 环境变量读取运行期配置，同时注入默认值与校验逻辑。
// runner 不读取任何配置文件，命令行参数原样转交给目标程序。
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	// WARP_TRACE 只看是否存在，空值同样视为开启。
	v.AllowEmptyEnv(true)
	setDefaults(v)

	for _, key := range []string{keyCacheDir, keyTrace, keyLogFile, keyLogMaxSize, keyLogMaxBackups, keyLogCompress} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", envField(key), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		sizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.Trace = v.IsSet(keyTrace)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogMaxSize, 10)
	v.SetDefault(keyLogMaxBackups, 3)
	v.SetDefault(keyLogCompress, true)
}

func sizeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ByteSize(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			n, err := parseMegabytes(v)
			if err != nil {
				return nil, err
			}
			return ByteSize(n), nil
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(int(v)), nil
		case ByteSize:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 ByteSize 类型: %T", v)
		}
	}
}
