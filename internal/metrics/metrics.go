package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000, 5000}

var (
	IPGeoRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_ipgeo_requests_total",
		Help: "Total IP geolocation lookups by source",
	}, []string{"source"})
	IPGeoFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_ipgeo_fail_total",
		Help: "Total failed or empty IP geolocation lookups by source",
	}, []string{"source"})
	IPGeoDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoleads_ipgeo_duration_ms",
		Help:    "IP geolocation lookup duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"source"})
	RevGeoRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoleads_revgeo_requests_total",
		Help: "Total outbound reverse geocoding requests",
	})
	RevGeoOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_revgeo_outcome_total",
		Help: "Coordinate resolutions by outcome kind",
	}, []string{"kind"})
	RevGeoDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geoleads_revgeo_duration_ms",
		Help:    "Reverse geocoding request duration in milliseconds",
		Buckets: durationBuckets,
	})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_cache_hits_total",
		Help: "Cache hits by cache name",
	}, []string{"cache"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_cache_misses_total",
		Help: "Cache misses by cache name",
	}, []string{"cache"})
	LeadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_leads_total",
		Help: "Lead submissions by result",
	}, []string{"result"})
	NotifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoleads_notify_total",
		Help: "Lead notification emails by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(IPGeoRequestsTotal)
	prometheus.MustRegister(IPGeoFailTotal)
	prometheus.MustRegister(IPGeoDurationMs)
	prometheus.MustRegister(RevGeoRequestsTotal)
	prometheus.MustRegister(RevGeoOutcomeTotal)
	prometheus.MustRegister(RevGeoDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(LeadsTotal)
	prometheus.MustRegister(NotifyTotal)
}

// 文档注释：返回 Prometheus 指标处理器，由主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
