// 程序入口：仅负责读取配置、初始化依赖并启动服务；路由注册在 internal/api
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geo-leads/internal/api"
	"geo-leads/internal/catalog"
	"geo-leads/internal/config"
	"geo-leads/internal/ipgeo"
	"geo-leads/internal/leads"
	"geo-leads/internal/logger"
	"geo-leads/internal/migrate"
	"geo-leads/internal/notify"
	"geo-leads/internal/revgeo"
	"geo-leads/internal/store"
	"geo-leads/internal/utils"
	"geo-leads/internal/version"
)

func main() {
	cfg := config.Load()
	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	l.Info("starting", "commit", version.Commit, "api_base", cfg.APIBase)

	cat := catalog.Default()
	for _, d := range cat.Duplicates() {
		l.Warn("catalog_duplicate_city", "slug", d.Slug, "groups", d.Groups)
	}

	var (
		db *sql.DB
		st *store.Store
	)
	if cfg.DBEnable {
		var err error
		db, err = utils.OpenPostgres(cfg)
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
		defer st.Close()
		if err := st.Ping(context.Background()); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(context.Background(), db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
	} else {
		l.Info("db_disabled")
	}

	rc := utils.OpenRedis(cfg)
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(context.Background()).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
	} else {
		l.Info("redis_ping_ok")
	}

	// IP 数据源：本地 mmdb → ipapi → ip2region
	var locs []ipgeo.Locator
	if cfg.MMDBPath != "" {
		if m, err := ipgeo.OpenMMDB(cfg.MMDBPath); err == nil {
			defer m.Close()
			locs = append(locs, m)
			l.Info("mmdb_ready", "path", cfg.MMDBPath)
		} else {
			l.Error("mmdb_open_error", "path", cfg.MMDBPath, "err", err)
		}
	}
	locs = append(locs, ipgeo.NewIPAPIClient(cfg.IPGeoEndpoint, &http.Client{Timeout: cfg.IPGeoTimeout}))
	if cfg.IP2RegionPath != "" {
		if x, err := ipgeo.OpenIP2Region(cfg.IP2RegionPath); err == nil {
			locs = append(locs, x)
			l.Info("ip2region_ready", "path", cfg.IP2RegionPath)
		} else {
			l.Error("ip2region_error", "err", err)
		}
	}
	ipRes := ipgeo.NewResolver(ipgeo.NewRedisCache(ipgeo.NewChain(locs...), rc, cfg.IPGeoCacheTTL))

	if cfg.GoogleMapsKey == "" {
		l.Warn("revgeo_key_missing")
	}
	coordRes := revgeo.NewResolver(
		revgeo.NewClient(cfg.RevGeoEndpoint, cfg.GoogleMapsKey, cfg.RevGeoTimeout),
		revgeo.Options{StateTTL: cfg.CookieMaxAge, CacheTTL: cfg.RevGeoCacheTTL, CacheSize: cfg.RevGeoCacheSize, Redis: rc},
	)

	deps := api.Deps{
		Catalog:       cat,
		IP:            ipRes,
		Coords:        coordRes,
		Redis:         rc,
		APIBase:       cfg.APIBase,
		SiteURL:       cfg.SiteURL,
		CORSOrigins:   cfg.CORSOrigins,
		EdgeGeo:       cfg.EdgeGeoHeaders,
		SecureCookies: cfg.TLSEnable,
		LastMod:       time.Now(),
	}
	if cfg.RateLimitEnabled {
		deps.RateLimitQPS = cfg.RateLimitQPS
	}
	if st != nil {
		sg := notify.NewSendGrid(cfg.SendGridHost, cfg.SendGridKey, cfg.SendGridFrom, cfg.SendGridTo)
		if !sg.Configured() {
			l.Warn("sendgrid_not_configured")
		}
		deps.Leads = leads.NewService(st, sg)
		deps.Stats = st
	}

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		var err error
		if cfg.TLSEnable {
			if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "geo-leads.local"); err != nil {
				l.Error("tls_cert_error", "err", err)
			}
			l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
			err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			l.Info("listening", "addr", cfg.Addr)
			err = s.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("listen_error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		l.Error("shutdown_error", "err", err)
	}
	l.Info("stopped")
}
