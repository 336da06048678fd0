package ipgeo

import (
	"context"
	"net"
	"net/http"

	"geo-leads/internal/clientip"
	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
	"geo-leads/internal/outcome"
	"geo-leads/internal/slug"
)

// Result：IP 解析结果，字段缺失时 JSON 输出 null
type Result struct {
	City  *string      `json:"city"`
	State *string      `json:"state"`
	Slug  *string      `json:"slug"`
	Kind  outcome.Kind `json:"-"`
}

// Resolver：按请求头解析访客位置
type Resolver struct {
	loc Locator
}

func NewResolver(loc Locator) *Resolver { return &Resolver{loc: loc} }

// Resolve：总是返回结果，不向调用方抛出错误
// 约束：网络/解析失败三字段均为 null；无法提取 IP 时不带地址查询（开发环境下返回服务器所在地）
// 边缘节点已给出城市时直接使用，不再查询数据源
func (r *Resolver) Resolve(ctx context.Context, h http.Header) Result {
	if p, ok := EdgeHint(ctx); ok {
		metrics.IPGeoRequestsTotal.WithLabelValues("edge").Inc()
		return fromPlace(p)
	}
	ip := clientip.FromHeaders(h)
	return r.ResolveIP(ctx, ip)
}

// ResolveIP：已知 IP 时直接查询
// 约束：非法地址按无 IP 处理，原始串不进入缓存键与上游路径
func (r *Resolver) ResolveIP(ctx context.Context, ip string) Result {
	if r == nil || r.loc == nil {
		return Result{Kind: outcome.KindUpstream}
	}
	if ip != "" {
		canon := canonicalIP(ip)
		if canon == "" {
			logger.L().Debug("geo_ip_invalid", "len", len(ip))
		}
		ip = canon
	}
	p, err := r.loc.Locate(ctx, ip)
	if err != nil {
		logger.L().Info("geo_ip_lookup_failed", "ip", ip, "source", r.loc.Name(), "err", err)
		return Result{Kind: outcome.KindUpstream}
	}
	if p.Empty() {
		logger.L().Debug("geo_ip_no_match", "ip", ip)
		return Result{Kind: outcome.KindNoMatch}
	}
	logger.L().Debug("geo_ip_lookup", "ip", ip, "city", p.City, "state", p.Region)
	return fromPlace(p)
}

// canonicalIP：合法地址的规范文本形式（允许 host:port），否则为空串
func canonicalIP(s string) string {
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}
	return ""
}

func fromPlace(p Place) Result {
	res := Result{City: outcome.StrPtr(p.City), State: outcome.StrPtr(p.Region), Kind: outcome.KindNone}
	if p.City != "" {
		res.Slug = outcome.StrPtr(slug.Normalize(p.City))
	}
	return res
}
