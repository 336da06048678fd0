package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"geo-leads/internal/geostate"
	"geo-leads/internal/leads"
	"geo-leads/internal/logger"
)

// submitLead：POST {base}/leads
// 返回：校验失败 400；落库失败 500；邮件失败仍为 200 并带 warning
func (s *server) submitLead(w http.ResponseWriter, r *http.Request) {
	if s.Leads == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "Lead storage unavailable"})
		return
	}
	var in leads.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		logger.L().Debug("lead_body_invalid", "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Invalid JSON body"})
		return
	}
	loc, _ := geostate.Read(geostate.NewCookieStore(nil, r))
	rc, err := s.Leads.Submit(r.Context(), in, leads.Meta{
		IP:        visitorIP(r),
		UserAgent: r.UserAgent(),
		GeoSlug:   loc.Slug,
	})
	var ve *leads.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": ve.Msg})
	case errors.Is(err, leads.ErrSave):
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Database insert failed"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Internal error"})
	default:
		writeJSON(w, http.StatusOK, rc)
	}
}
