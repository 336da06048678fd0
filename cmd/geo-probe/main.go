package main

import (
	"context"
	"encoding/json"
	"flag"
	"math"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"geo-leads/internal/capture"
	"geo-leads/internal/logger"
	"geo-leads/internal/presence"
)

// 模拟一次访客页面加载：先执行位置采集（坐标可选），再按 IP 拉取展示标签
// 用于部署后联调 {base}/geo 两个端点
func main() {
	base := flag.String("base", "http://localhost:8080/api", "API base URL")
	lat := flag.Float64("lat", math.NaN(), "device latitude")
	lng := flag.Float64("lng", math.NaN(), "device longitude")
	timeout := flag.Duration("timeout", 15*time.Second, "overall timeout")
	flag.Parse()
	l := logger.Setup()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}
	site := siteURL(*base)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	cp := capture.New(capture.JarState{Jar: jar, URL: site}, fixedPosition{lat: *lat, lng: *lng},
		capture.NewHTTPSubmitter(*base, client), capture.DefaultOptions)
	co := cp.Run(ctx)
	l.Info("capture_done", "outcome", co.String())

	h := presence.NewHook(presence.NewHTTPFetcher(*base, client))
	v := h.Mount(ctx)
	l.Info("presence_done", "status", v.Status.String(), "label", v.Label)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"capture": co.String(), "status": v.Status.String(), "view": v})
}

// fixedPosition：以命令行坐标代替设备定位；未提供坐标视为不支持定位
type fixedPosition struct{ lat, lng float64 }

func (f fixedPosition) CurrentPosition(ctx context.Context, opt capture.PositionOptions) (capture.Position, error) {
	if math.IsNaN(f.lat) || math.IsNaN(f.lng) {
		return capture.Position{}, capture.ErrUnsupported
	}
	return capture.Position{Lat: f.lat, Lng: f.lng, At: time.Now()}, nil
}

// siteURL：Cookie 作用于站点根路径
func siteURL(base string) string {
	if i := strings.Index(base, "://"); i >= 0 {
		if j := strings.IndexByte(base[i+3:], '/'); j >= 0 {
			return base[:i+3+j] + "/"
		}
	}
	return strings.TrimRight(base, "/") + "/"
}
