package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"geo-leads/internal/catalog"
	"geo-leads/internal/geostate"
	"geo-leads/internal/logger"
	"geo-leads/internal/outcome"
	"geo-leads/internal/presence"
	"geo-leads/internal/routes"
	"geo-leads/internal/slug"
	"geo-leads/internal/store"
	"geo-leads/internal/version"
)

// listRoutes：GET {base}/routes，全部 (topic, city) 页面及区域分组
func (s *server) listRoutes(w http.ResponseWriter, r *http.Request) {
	rs := routes.All(s.Catalog)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(rs), "routes": rs, "groups": s.Catalog.Groups()})
}

func (s *server) sitemap(w http.ResponseWriter, r *http.Request) {
	b, err := routes.Sitemap(s.SiteURL, routes.All(s.Catalog), s.LastMod)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "sitemap failed"})
		return
	}
	w.Header().Set("content-type", "application/xml; charset=utf-8")
	_, _ = w.Write(b)
}

const maxStatsDays = 90

// resolutionStats：GET {base}/stats?days=N，最近 N 天（默认 7，上限 90）的解析统计
func (s *server) resolutionStats(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "Stats unavailable"})
		return
	}
	days := 7
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && v > 0 {
		days = min(v, maxStatsDays)
	}
	rows, err := s.Stats.RecentResolutions(r.Context(), days)
	if err != nil {
		logger.L().Error("stats_query_error", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Stats query failed"})
		return
	}
	if rows == nil {
		rows = []store.DailyCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "days": days, "rows": rows})
}

type visitorView struct {
	City      *string `json:"city"`
	State     *string `json:"state"`
	Slug      *string `json:"slug"`
	Supported bool    `json:"supported"`
	Label     string  `json:"label"`
	Path      string  `json:"path,omitempty"`
}

type pageView struct {
	Topic   string           `json:"topic"`
	City    catalog.CityMeta `json:"city"`
	Visitor visitorView      `json:"visitor"`
}

// pageContext：GET /page/{topic}/{city}，服务端渲染所需的页面与访客上下文
// 约束：访客信息只读已持久化的 Cookie，不发起任何外部调用；topic 与 city 参数均先归一化
func (s *server) pageContext(w http.ResponseWriter, r *http.Request) {
	topic := slug.Normalize(chi.URLParam(r, "topic"))
	meta, ok := s.Catalog.Lookup(slug.Normalize(chi.URLParam(r, "city")))
	if !ok || !s.Catalog.HasTopic(topic) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Not found"})
		return
	}
	loc, _ := geostate.Read(geostate.NewCookieStore(nil, r))
	v := visitorView{
		City:  outcome.StrPtr(loc.City),
		State: outcome.StrPtr(loc.State),
		Slug:  outcome.StrPtr(loc.Slug),
		Label: presence.Label(loc.City),
	}
	if s.Catalog.Supported(loc.Slug) {
		v.Supported = true
		v.Path = routes.Route{Topic: topic, City: loc.Slug}.Path()
	}
	writeJSON(w, http.StatusOK, pageView{Topic: topic, City: meta, Visitor: v})
}

// healthz：存储已配置时附带 Ping 结果，失败返回 503
func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"ok": true, "commit": version.Commit}
	code := http.StatusOK
	if s.Stats != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.Stats.Ping(ctx); err != nil {
			logger.L().Warn("healthz_db_error", "err", err)
			body["ok"], body["db"] = false, "error"
			code = http.StatusServiceUnavailable
		} else {
			body["db"] = "ok"
		}
	}
	writeJSON(w, code, body)
}
