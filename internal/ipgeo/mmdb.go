package ipgeo

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"

	"geo-leads/internal/logger"
	"geo-leads/internal/metrics"
)

// MMDBLocator：MaxMind GeoLite2/GeoIP2 City 本地库
type MMDBLocator struct {
	r    *geoip2.Reader
	lang string
}

// OpenMMDB：打开 City 库并校验类型
// 背景：先用 maxminddb 读取元数据，拒绝 Country/ASN 等不含城市字段的库，避免静默全部未命中。
func OpenMMDB(path string) (*MMDBLocator, error) {
	meta, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	dbType := meta.Metadata.DatabaseType
	epoch := meta.Metadata.BuildEpoch
	_ = meta.Close()
	if !strings.Contains(dbType, "City") {
		return nil, fmt.Errorf("mmdb %s: database type %q has no city data", path, dbType)
	}
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	logger.L().Info("mmdb_open_ok", "path", path, "type", dbType, "build_epoch", epoch)
	return &MMDBLocator{r: r, lang: "en"}, nil
}

func (m *MMDBLocator) Name() string { return "mmdb" }

func (m *MMDBLocator) Locate(ctx context.Context, ip string) (Place, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Place{}, ErrNotFound
	}
	metrics.IPGeoRequestsTotal.WithLabelValues(m.Name()).Inc()
	rec, err := m.r.City(parsed)
	if err != nil {
		metrics.IPGeoFailTotal.WithLabelValues(m.Name()).Inc()
		return Place{}, err
	}
	var p Place
	p.City = rec.City.Names[m.lang]
	if len(rec.Subdivisions) > 0 {
		p.Region = rec.Subdivisions[0].Names[m.lang]
	}
	if p.Empty() {
		metrics.IPGeoFailTotal.WithLabelValues(m.Name()).Inc()
		return Place{}, ErrNotFound
	}
	return p, nil
}

func (m *MMDBLocator) Close() error { return m.r.Close() }
