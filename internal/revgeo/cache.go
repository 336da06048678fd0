package revgeo

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang/geo/s2"
	"github.com/redis/go-redis/v9"

	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
)

// cellLevel：S2 单元层级，13 级边长约 1km，足以覆盖城市级粒度
const cellLevel = 13

// cellKey：坐标所在 S2 单元的 token
func cellKey(lat, lng float64) string {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng)).Parent(cellLevel).ToToken()
}

// cityState：缓存值，仅保存服务方 OK 的反查结果
type cityState struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// 文档注释：本地 LRU 缓存（S2 单元为键）
// 背景：同一区域的访客在短周期内重复反查，进程内缓存减少外部调用；TTL 可调。
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type lruItem struct {
	k   string
	v   cityState
	exp time.Time
}

func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 4096
	}
	return &LRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU) Get(k string) (cityState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return cityState{}, false
	}
	it := e.Value.(lruItem)
	if c.now().Before(it.exp) {
		c.lst.MoveToFront(e)
		return it.v, true
	}
	c.lst.Remove(e)
	delete(c.dict, k)
	return cityState{}, false
}

func (c *LRU) Set(k string, v cityState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := lruItem{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(lruItem).k)
		c.lst.Remove(back)
	}
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// cellCache：进程内 LRU + 可选 Redis 两级缓存
// 约束：Redis 异常按未命中处理，不影响反查主流程
type cellCache struct {
	lru *LRU
	rc  *redis.Client
	ttl time.Duration
}

func (c *cellCache) get(ctx context.Context, key string) (cityState, bool) {
	if c == nil {
		return cityState{}, false
	}
	if c.lru != nil {
		if v, ok := c.lru.Get(key); ok {
			metrics.CacheHitsTotal.WithLabelValues("revgeo_lru").Inc()
			return v, true
		}
	}
	if c.rc != nil {
		if s, err := c.rc.Get(ctx, "revgeo:"+key).Result(); err == nil && s != "" {
			var v cityState
			if json.Unmarshal([]byte(s), &v) == nil {
				metrics.CacheHitsTotal.WithLabelValues("revgeo_redis").Inc()
				if c.lru != nil {
					c.lru.Set(key, v)
				}
				return v, true
			}
		}
	}
	metrics.CacheMissesTotal.WithLabelValues("revgeo").Inc()
	return cityState{}, false
}

func (c *cellCache) set(ctx context.Context, key string, v cityState) {
	if c == nil {
		return
	}
	if c.lru != nil {
		c.lru.Set(key, v)
	}
	if c.rc != nil {
		b, _ := json.Marshal(v)
		if err := c.rc.Set(ctx, "revgeo:"+key, string(b), c.ttl).Err(); err != nil {
			logger.L().Debug("revgeo_cache_set_error", "err", err)
		}
	}
}
