package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 缓存键等基础字段，便于不同阶段复用。
func BaseFields(action, cacheKey string) logrus.Fields {
	return logrus.Fields{
		"action":    action,
		"cache_key": cacheKey,
	}
}

// CacheFields 提供缓存目录与判定结果字段，供失效/解包日志复用。
func CacheFields(cacheKey, cachePath, verdict string) logrus.Fields {
	fields := BaseFields("cache_check", cacheKey)
	fields["cache_path"] = cachePath
	fields["verdict"] = verdict
	return fields
}
