// 包 utils：外部连接与证书工具，统一从 config 读取参数
package utils

import (
	"geo-leads/internal/config"
	"geo-leads/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：REDIS_ENABLE 未开启时返回 nil，调用方据此跳过共享缓存
func OpenRedis(c config.Config) *redis.Client {
	if !c.RedisEnable {
		return nil
	}
	logger.L().Debug("redis_env", "addr", c.RedisAddr(), "db", c.RedisDB)
	return redis.NewClient(&redis.Options{Addr: c.RedisAddr(), Password: c.RedisPass, DB: c.RedisDB})
}
