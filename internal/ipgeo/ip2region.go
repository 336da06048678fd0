package ipgeo

import (
	"context"
	"strings"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"

	"geo-leads/internal/metrics"
)

// IP2RegionLocator：ip2region xdb 离线库（仅 IPv4）
// 约束：区域串格式为 国家|区域|省份|城市|ISP，"0" 表示缺失
type IP2RegionLocator struct {
	v4 *xdb.Searcher
}

func OpenIP2Region(v4Path string) (*IP2RegionLocator, error) {
	s, err := xdb.NewWithFileOnly(xdb.IPv4, v4Path)
	if err != nil {
		return nil, err
	}
	return &IP2RegionLocator{v4: s}, nil
}

func (l *IP2RegionLocator) Name() string { return "ip2region" }

func (l *IP2RegionLocator) Locate(ctx context.Context, ip string) (Place, error) {
	if ip == "" || strings.Contains(ip, ":") {
		return Place{}, ErrNotFound
	}
	metrics.IPGeoRequestsTotal.WithLabelValues(l.Name()).Inc()
	region, err := l.v4.SearchByStr(ip)
	if err != nil || region == "" {
		metrics.IPGeoFailTotal.WithLabelValues(l.Name()).Inc()
		return Place{}, ErrNotFound
	}
	p := parseRegion(region)
	if p.Empty() {
		metrics.IPGeoFailTotal.WithLabelValues(l.Name()).Inc()
		return Place{}, ErrNotFound
	}
	return p, nil
}

func parseRegion(s string) Place {
	parts := strings.Split(s, "|")
	var p Place
	if len(parts) > 2 {
		p.Region = clean(parts[2])
	}
	if len(parts) > 3 {
		p.City = clean(parts[3])
	}
	return p
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "0" || strings.EqualFold(s, "unknown") {
		return ""
	}
	return s
}
