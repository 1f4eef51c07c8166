package config

import (
	"errors"
	"fmt"
)

// 启动期配置错误的分类哨兵，配合 errors.Is 判断 ConfigError 的种类。
var (
	ErrMissingTerminator = errors.New("missing NUL terminator")
	ErrInvalidEncoding   = errors.New("invalid identifier encoding")
	ErrNoDataDir         = errors.New("no local data directory")
)

// ConfigError 描述启动期无法恢复的配置问题：内嵌标识缺少终止符、编码非法，
// 或者既没有 WARP_CACHE_DIR 也找不到平台数据目录。
type ConfigError struct {
	Kind error
	Name string
	Err  error
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrMissingTerminator):
		return fmt.Sprintf("%s has no NUL terminator", e.Name)
	case errors.Is(e.Kind, ErrInvalidEncoding):
		return fmt.Sprintf("can't convert %s slice to string", e.Name)
	case errors.Is(e.Kind, ErrNoDataDir):
		if e.Err != nil {
			return fmt.Sprintf("no data local dir found: %v", e.Err)
		}
		return "no data local dir found"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return e.Name
}

// Is 让 errors.Is(err, ErrMissingTerminator) 等判断直接命中分类哨兵。
func (e *ConfigError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FieldError 提供字段路径与错误原因，便于向用户反馈具体的环境变量。
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// newFieldError 创建包含字段路径与原因的 error。
func newFieldError(field, reason string) error {
	return FieldError{Field: field, Reason: reason}
}

// envField 将配置键还原成对应的环境变量名，方便输出 WARP_XXX 形式。
func envField(key string) string {
	return envPrefix + "_" + key
}
