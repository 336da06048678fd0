package ipgeo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
)

// RedisCache：为 Locator 增加 Redis 热点缓存
// 约束：仅缓存成功结果；空 IP（按来源推断）不缓存；Redis 异常视为未命中，不阻断查询
type RedisCache struct {
	next Locator
	rc   *redis.Client
	ttl  time.Duration
}

// NewRedisCache：rc 为 nil 时直接返回 next
func NewRedisCache(next Locator, rc *redis.Client, ttl time.Duration) Locator {
	if rc == nil {
		return next
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{next: next, rc: rc, ttl: ttl}
}

func (c *RedisCache) Name() string { return "redis+" + c.next.Name() }

func (c *RedisCache) Locate(ctx context.Context, ip string) (Place, error) {
	if ip == "" {
		return c.next.Locate(ctx, ip)
	}
	key := "ipgeo:" + ip
	if s, err := c.rc.Get(ctx, key).Result(); err == nil && s != "" {
		var p Place
		if json.Unmarshal([]byte(s), &p) == nil {
			metrics.CacheHitsTotal.WithLabelValues("ipgeo").Inc()
			return p, nil
		}
	}
	metrics.CacheMissesTotal.WithLabelValues("ipgeo").Inc()
	p, err := c.next.Locate(ctx, ip)
	if err != nil {
		return p, err
	}
	b, _ := json.Marshal(p)
	if err := c.rc.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
		logger.L().Debug("ipgeo_cache_set_error", "err", err)
	}
	return p, nil
}
