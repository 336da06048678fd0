// 包 api：HTTP 路由注册，主入口只负责组装依赖
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"geo-leads/internal/catalog"
	"geo-leads/internal/ipgeo"
	"geo-leads/internal/leads"
	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
	"geo-leads/internal/middleware"
	"geo-leads/internal/revgeo"
	"geo-leads/internal/store"
)

// StatsRecorder：解析统计读写与存储健康检查，可为 nil
type StatsRecorder interface {
	IncrResolution(ctx context.Context, source, slug string, supported bool) error
	RecentResolutions(ctx context.Context, days int) ([]store.DailyCount, error)
	Ping(ctx context.Context) error
}

// Deps：路由所需的全部依赖；除 Catalog 外均可为 nil
type Deps struct {
	Catalog *catalog.Catalog
	IP      *ipgeo.Resolver
	Coords  *revgeo.Resolver
	Leads   *leads.Service
	Stats   StatsRecorder
	Redis   *redis.Client

	APIBase       string
	SiteURL       string
	CORSOrigins   []string
	RateLimitQPS  int
	EdgeGeo       bool
	SecureCookies bool
	// LastMod：站点地图 lastmod，零值时省略
	LastMod time.Time
}

type server struct {
	Deps
	seen *seenFilter
}

// NewRouter：构建完整路由
// 路由：{base}/geo GET|POST、{base}/leads POST、{base}/routes GET、{base}/stats GET、{base}/metrics、
// /page/{topic}/{city}、/sitemap.xml、/healthz
func NewRouter(d Deps) http.Handler {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	d.APIBase = "/" + strings.Trim(d.APIBase, "/")
	if d.APIBase == "/" {
		d.APIBase = "/api"
	}
	s := &server{Deps: d, seen: newSeenFilter(d.Redis, 1<<16, 4, 36*time.Hour)}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(logger.AccessMiddleware(logger.L()))
	r.Use(middleware.RateLimit(d.RateLimitQPS))
	if d.EdgeGeo {
		r.Use(middleware.EdgeGeo)
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route(d.APIBase, func(r chi.Router) {
		r.Get("/geo", s.geoByIP)
		r.Post("/geo", s.geoByCoords)
		r.Post("/leads", s.submitLead)
		r.Get("/routes", s.listRoutes)
		r.Get("/stats", s.resolutionStats)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	})
	r.Get("/page/{topic}/{city}", s.pageContext)
	r.Get("/sitemap.xml", s.sitemap)
	r.Get("/healthz", s.healthz)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "Not found"})
	})
	return r
}
