package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"geo-leads/internal/catalog"
	"geo-leads/internal/config"
	"geo-leads/internal/logger"
	"geo-leads/internal/routes"
)

// 构建期生成页面路由清单与站点地图，供静态生成步骤逐条渲染
// 输出：{out}/routes.txt 每行一个路径；{out}/sitemap.xml
func main() {
	out := flag.String("out", filepath.Join("data", "routes"), "output directory")
	strict := flag.Bool("strict", false, "fail when a city appears in more than one group")
	flag.Parse()
	cfg := config.Load()
	l := logger.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	cat := catalog.Default()
	if *strict {
		var err error
		if cat, err = catalog.DefaultStrict(); err != nil {
			l.Error("catalog_invalid", "err", err)
			os.Exit(1)
		}
	}
	n, err := generate(*out, cfg.SiteURL, cat, time.Now())
	if err != nil {
		l.Error("route_gen_error", "err", err)
		os.Exit(1)
	}
	if n == 0 {
		l.Warn("route_gen_empty", "out", *out)
	}
	l.Info("route_gen_done", "routes", n, "out", *out)
}

func generate(dir, siteURL string, cat *catalog.Catalog, lastMod time.Time) (int, error) {
	rs := routes.All(cat)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	var b strings.Builder
	for _, p := range routes.Paths(rs) {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "routes.txt"), []byte(b.String()), 0o644); err != nil {
		return 0, err
	}
	sm, err := routes.Sitemap(siteURL, rs, lastMod)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(dir, "sitemap.xml"), sm, 0o644); err != nil {
		return 0, err
	}
	return len(rs), nil
}
