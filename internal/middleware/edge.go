package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"geo-leads/internal/ipgeo"
	"geo-leads/internal/logger"
)

// EdgeGeo：读取 CDN 注入的访客地理头并放入上下文（Vercel 优先，其次 Cloudflare 的位置头）
// 约束：只应在确认请求经过 CDN 时启用，头部可被客户端伪造
func EdgeGeo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := ParseEdgeGeo(r.Header)
		if p.Empty() {
			next.ServeHTTP(w, r)
			return
		}
		logger.L().Debug("edge_geo_inject", "city", p.City, "region", p.Region)
		next.ServeHTTP(w, r.WithContext(ipgeo.WithEdgeHint(r.Context(), p)))
	})
}

// ParseEdgeGeo：x-vercel-ip-city 为 URL 编码，cf-ipcity 为原文
func ParseEdgeGeo(h http.Header) ipgeo.Place {
	var p ipgeo.Place
	if v := h.Get("x-vercel-ip-city"); v != "" {
		if d, err := url.QueryUnescape(v); err == nil {
			v = d
		}
		p.City = strings.TrimSpace(v)
		p.Region = strings.TrimSpace(h.Get("x-vercel-ip-country-region"))
		return p
	}
	p.City = strings.TrimSpace(h.Get("cf-ipcity"))
	p.Region = strings.TrimSpace(h.Get("cf-region-code"))
	if p.Region == "" {
		p.Region = strings.TrimSpace(h.Get("cf-region"))
	}
	return p
}
