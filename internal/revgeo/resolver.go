package revgeo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"geo-leads/internal/geostate"
	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
	"geo-leads/internal/outcome"
	"geo-leads/internal/slug"
)

// Outcome：坐标解析结果
// 约束：OK=false 时 city/state/slug 均为 null；Kind 仅用于日志与测试，不对外输出
type Outcome struct {
	OK     bool         `json:"ok"`
	City   *string      `json:"city"`
	State  *string      `json:"state"`
	Slug   *string      `json:"slug"`
	Status string       `json:"status,omitempty"`
	Error  string       `json:"error,omitempty"`
	Kind   outcome.Kind `json:"-"`
}

// Options：解析器可选项
type Options struct {
	// StateTTL：写入访客状态的有效期，<=0 时为 geostate.DefaultTTL
	StateTTL time.Duration
	// CacheTTL：单元缓存有效期，<=0 时关闭缓存（默认）；开启后同一单元内的访客共用一次反查结果
	CacheTTL time.Duration
	// CacheSize：进程内 LRU 容量
	CacheSize int
	// Redis：可选二级缓存
	Redis *redis.Client
}

// Resolver：坐标 → 城市/州/slug，并写入访客状态
type Resolver struct {
	geo   Geocoder
	ttl   time.Duration
	cache *cellCache
}

func NewResolver(geo Geocoder, opt Options) *Resolver {
	r := &Resolver{geo: geo, ttl: opt.StateTTL}
	if r.ttl <= 0 {
		r.ttl = geostate.DefaultTTL
	}
	if opt.CacheTTL > 0 {
		r.cache = &cellCache{lru: NewLRU(opt.CacheSize, opt.CacheTTL), rc: opt.Redis, ttl: opt.CacheTTL}
	}
	return r
}

// Resolve：校验输入 → 单次反查 → 提取城市/州 → 归一化 slug → 写入状态
// 约束：坐标非有限数值或缺少凭据时本地拒绝，不发起外部调用；上游非 OK 状态原样返回且不写状态；
// 不向调用方返回 error
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64, st geostate.Store) Outcome {
	out := r.resolve(ctx, lat, lng, st)
	metrics.RevGeoOutcomeTotal.WithLabelValues(out.Kind.String()).Inc()
	return out
}

func (r *Resolver) resolve(ctx context.Context, lat, lng float64, st geostate.Store) Outcome {
	if !finite(lat) || !finite(lng) {
		return Outcome{Error: "Missing lat/lng", Kind: outcome.KindInvalidInput}
	}
	if r.geo == nil || !r.geo.Configured() {
		logger.L().Warn("revgeo_not_configured")
		return Outcome{Error: "Missing GOOGLE_MAPS_API_KEY", Kind: outcome.KindInvalidInput}
	}
	key := cellKey(lat, lng)
	cs, hit := r.cache.get(ctx, key)
	if !hit {
		resp, err := r.geo.Reverse(ctx, lat, lng)
		if err != nil {
			logger.L().Info("revgeo_failed", "err", err)
			return Outcome{Error: "Geocode failed", Kind: outcome.KindUpstream}
		}
		if resp.Status != "OK" {
			logger.L().Info("revgeo_status", "status", resp.Status, "message", resp.ErrorMessage)
			return Outcome{Status: resp.Status, Kind: outcome.KindUpstream}
		}
		cs.City, cs.State = CityState(resp.Results)
		r.cache.set(ctx, key, cs)
	}
	var s string
	if cs.City != "" {
		s = slug.Normalize(cs.City)
	}
	geostate.Write(st, geostate.Location{City: cs.City, State: cs.State, Slug: s}, r.ttl)
	kind := outcome.KindNone
	if cs.City == "" && cs.State == "" {
		kind = outcome.KindNoMatch
	}
	logger.L().Debug("revgeo_resolved", "city", cs.City, "state", cs.State, "slug", s, "cache_hit", hit)
	return Outcome{
		OK:    true,
		City:  outcome.StrPtr(cs.City),
		State: outcome.StrPtr(cs.State),
		Slug:  outcome.StrPtr(s),
		Kind:  kind,
	}
}
