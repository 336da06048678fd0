package api

import (
	"context"
	"encoding/json"
	"net/http"

	"geo-leads/internal/geostate"
	"geo-leads/internal/logger"
	"geo-leads/internal/outcome"
	"geo-leads/internal/revgeo"
)

const maxBodyBytes = 1 << 20

// geoByIP：GET {base}/geo，按访客 IP 尽力解析；任何失败都返回 200 与三个 null
func (s *server) geoByIP(w http.ResponseWriter, r *http.Request) {
	res := s.IP.Resolve(r.Context(), r.Header)
	s.record(r, "ip", outcome.Deref(res.Slug))
	writeJSON(w, http.StatusOK, res)
}

type coordsBody struct {
	Lat json.RawMessage `json:"lat"`
	Lng json.RawMessage `json:"lng"`
}

// geoByCoords：POST {base}/geo，坐标反查并写入位置 Cookie
// 约束：请求体无法解析时按缺少坐标处理
func (s *server) geoByCoords(w http.ResponseWriter, r *http.Request) {
	var body coordsBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		logger.L().Debug("geo_body_invalid", "err", err)
	}
	st := geostate.NewCookieStore(w, r)
	st.Secure = s.SecureCookies
	var out revgeo.Outcome
	if s.Coords == nil {
		out = revgeo.Outcome{Error: "Missing GOOGLE_MAPS_API_KEY", Kind: outcome.KindInvalidInput}
	} else {
		out = s.Coords.Resolve(r.Context(), revgeo.ParseCoordinate(body.Lat), revgeo.ParseCoordinate(body.Lng), st)
	}
	if out.OK {
		s.record(r, "coords", outcome.Deref(out.Slug))
	}
	writeJSON(w, http.StatusOK, out)
}

// record：按访客 + 来源 + slug 每天最多计一次
func (s *server) record(r *http.Request, source, slug string) {
	if s.Stats == nil {
		return
	}
	ctx := r.Context()
	if !s.seen.firstSeen(ctx, visitorIP(r)+"|"+source+"|"+slug) {
		return
	}
	if err := s.Stats.IncrResolution(context.WithoutCancel(ctx), source, slug, s.Catalog.Supported(slug)); err != nil {
		logger.L().Debug("stats_incr_error", "err", err)
	}
}
